package types

import (
	"errors"
	"strings"
)

// Config holds the application settings read from config.yaml and the
// environment. Clinic-facing settings (doctor name, paper size) live in the
// database instead; see Settings.
type Config struct {
	DataDir string      `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	Listen  string      `mapstructure:"listen" yaml:"listen"`
	Log     LogConfig   `mapstructure:"log" yaml:"log"`
	Print   PrintConfig `mapstructure:"print" yaml:"print"`
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// PrintConfig controls the print spooler. An empty Command spools documents
// without sending them to a printer.
type PrintConfig struct {
	Command  string `mapstructure:"command" yaml:"command,omitempty"`
	SpoolDir string `mapstructure:"spool_dir" yaml:"spool_dir,omitempty"`
}

// Config defaults.
const (
	DefaultListen       = "127.0.0.1:4780"
	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
	DefaultLogBackups   = 3
	DefaultLogMaxAge    = 90
	DatabaseFileName    = "clinic.db"
)

// Config validation errors.
var (
	ErrDataDirEmpty    = errors.New("data directory must not be empty")
	ErrListenEmpty     = errors.New("listen address must not be empty")
	ErrLogLevelUnknown = errors.New("unknown log level")
)

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the Config is well-formed.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if c.Listen == "" {
		return ErrListenEmpty
	}
	if c.Log.Level != "" && !knownLogLevels[strings.ToLower(c.Log.Level)] {
		return ErrLogLevelUnknown
	}
	return nil
}
