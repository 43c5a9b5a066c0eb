// Package logging builds the application logger: zerolog writing to the
// console and to a size-rotated log file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// Logger is the application logger together with the file it writes to.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// New returns a logger writing to console and, when cfg.File is set, to a
// rotated file. pretty selects zerolog's human-readable console format.
func New(cfg types.LogConfig, console io.Writer, pretty bool) (*Logger, error) {
	var writers []io.Writer
	if console != nil {
		if pretty {
			console = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
		}
		writers = append(writers, console)
	}

	l := &Logger{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		writers = append(writers, l.file)
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = zerolog.MultiLevelWriter(writers...)
	}

	l.Logger = zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return l, nil
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
