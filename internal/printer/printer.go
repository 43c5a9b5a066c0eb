// Package printer hands rendered pages to the system print path. Every job
// is first written to a spool directory under a UUIDv7 name; if a print
// command is configured it is then run against the spooled file.
package printer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrPrintFailed is returned when the print command could not be run or
// exited with an error. The spooled file is kept for reprinting.
var ErrPrintFailed = errors.New("print failed")

// Command placeholders replaced in the configured print command.
const (
	FilePlaceholder  = "{file}"
	PaperPlaceholder = "{paper}"
)

// Job describes one spooled document.
type Job struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Paper string `json:"paper"`
	Sent  bool   `json:"sent"`
}

// Spooler writes print jobs to a directory and optionally runs a command on
// each one.
type Spooler struct {
	dir     string
	command []string
	log     zerolog.Logger

	// run executes the print command; replaced in tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New returns a Spooler writing to dir. command is split on whitespace; an
// empty command spools without printing. Occurrences of {file} and {paper}
// are substituted per job, and the file path is appended when {file} does
// not appear.
func New(dir, command string, log zerolog.Logger) *Spooler {
	return &Spooler{
		dir:     dir,
		command: strings.Fields(command),
		log:     log,
		run:     runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Dir returns the spool directory.
func (s *Spooler) Dir() string {
	return s.dir
}

// Print spools page and sends it to the printer with the given paper size.
// The returned Job is valid even when the error wraps ErrPrintFailed.
func (s *Spooler) Print(ctx context.Context, page []byte, paper string) (Job, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Job{}, fmt.Errorf("generating job id: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Job{}, fmt.Errorf("creating spool directory: %w", err)
	}

	job := Job{ID: id.String(), Paper: paper}
	job.Path = filepath.Join(s.dir, job.ID+".html")
	if err := os.WriteFile(job.Path, page, 0o644); err != nil {
		return Job{}, fmt.Errorf("writing spool file: %w", err)
	}

	if len(s.command) == 0 {
		s.log.Info().Str("job", job.ID).Str("path", job.Path).Msg("document spooled")
		return job, nil
	}

	name, args := s.expand(job)
	out, err := s.run(ctx, name, args...)
	if err != nil {
		s.log.Error().Err(err).Str("job", job.ID).Str("command", name).
			Str("output", strings.TrimSpace(string(out))).Msg("print command failed")
		return job, fmt.Errorf("%w: %s: %v", ErrPrintFailed, name, err)
	}
	job.Sent = true
	s.log.Info().Str("job", job.ID).Str("paper", paper).Msg("document sent to printer")
	return job, nil
}

// expand substitutes the job into the configured command.
func (s *Spooler) expand(job Job) (string, []string) {
	hasFile := false
	args := make([]string, 0, len(s.command))
	for _, a := range s.command[1:] {
		if strings.Contains(a, FilePlaceholder) {
			hasFile = true
		}
		a = strings.ReplaceAll(a, FilePlaceholder, job.Path)
		a = strings.ReplaceAll(a, PaperPlaceholder, job.Paper)
		args = append(args, a)
	}
	if !hasFile {
		args = append(args, job.Path)
	}
	return s.command[0], args
}
