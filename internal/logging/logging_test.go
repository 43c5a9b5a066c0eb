package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew_ConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "clinic.log")
	var console bytes.Buffer

	l, err := New(types.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &console, false)
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Int64("patient", 7).Msg("patient added")
	require.NoError(t, l.Close())

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "patient added", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 7, entry["patient"])
	assert.Contains(t, entry, "time")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "patient added")
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_Pretty(t *testing.T) {
	var console bytes.Buffer
	l, err := New(types.LogConfig{Level: "debug"}, &console, true)
	require.NoError(t, err)

	l.Debug().Msg("starting")
	assert.Contains(t, console.String(), "starting")
	assert.False(t, json.Valid(bytes.TrimSpace(console.Bytes())))
	assert.NoError(t, l.Close())
}

func TestNew_NoOutputs(t *testing.T) {
	l, err := New(types.LogConfig{}, nil, false)
	require.NoError(t, err)
	l.Info().Msg("dropped")
	assert.NoError(t, l.Close())
}
