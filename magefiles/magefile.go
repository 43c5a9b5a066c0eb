//go:build mage

// Package main provides build targets for the clinic project using Mage.
//
// Usage:
//
//	mage build      Compile the clinic binary to bin/
//	mage test       Run all tests
//	mage cover      Run tests with a coverage profile in bin/coverage.out
//	mage lint       Run golangci-lint
//	mage serve      Build and serve the API against a scratch data directory
//	mage clean      Remove build artifacts
//	mage install    Install clinic to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "clinic"
	binaryDir  = "bin"
	cmdDir     = "./cmd/clinic"
	versionVar = "github.com/mesh-intelligence/clinic/internal/cli.Version"
)

// ldflags stamps the version from `git describe` when available.
func ldflags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		return ""
	}
	return fmt.Sprintf("-X %s=%s", versionVar, strings.TrimPrefix(version, "v"))
}

// Build compiles the clinic binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if flags := ldflags(); flags != "" {
		args = append(args, "-ldflags", flags)
	}
	return sh.RunV("go", append(args, cmdDir)...)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs all tests with the race detector and writes a coverage profile.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV("go", "test", "-race", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func", profile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Serve builds the binary and serves the API with config and data kept under
// bin/dev, away from the real clinic database.
func Serve() error {
	mg.Deps(Build)
	dev := filepath.Join(binaryDir, "dev")
	bin := filepath.Join(binaryDir, binaryName)
	dirs := []string{"--config-dir", filepath.Join(dev, "config"), "--data-dir", filepath.Join(dev, "data")}
	if err := sh.RunV(bin, append(dirs, "init")...); err != nil {
		return err
	}
	return sh.RunV(bin, append(dirs, "serve")...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
