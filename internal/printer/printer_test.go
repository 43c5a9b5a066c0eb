package printer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

func fakeRun(calls *[]call, out string, err error) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{name: name, args: args})
		return []byte(out), err
	}
}

func TestPrint_SpoolOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	s := New(dir, "", zerolog.Nop())
	var calls []call
	s.run = fakeRun(&calls, "", nil)

	job, err := s.Print(context.Background(), []byte("<html>rx</html>"), "A4")
	require.NoError(t, err)
	assert.False(t, job.Sent)
	assert.Empty(t, calls)

	id, err := uuid.Parse(job.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	data, err := os.ReadFile(job.Path)
	require.NoError(t, err)
	assert.Equal(t, "<html>rx</html>", string(data))
	assert.Equal(t, dir, filepath.Dir(job.Path))
}

func TestPrint_RunsCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantName string
		wantArgs func(path string) []string
	}{
		{
			name:     "path appended",
			command:  "lp -o media={paper}",
			wantName: "lp",
			wantArgs: func(p string) []string { return []string{"-o", "media=A5", p} },
		},
		{
			name:     "explicit file placeholder",
			command:  "print-html --in {file} --size {paper} --quiet",
			wantName: "print-html",
			wantArgs: func(p string) []string { return []string{"--in", p, "--size", "A5", "--quiet"} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(t.TempDir(), tt.command, zerolog.Nop())
			var calls []call
			s.run = fakeRun(&calls, "request id is lp-1", nil)

			job, err := s.Print(context.Background(), []byte("x"), "A5")
			require.NoError(t, err)
			assert.True(t, job.Sent)
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantName, calls[0].name)
			assert.Equal(t, tt.wantArgs(job.Path), calls[0].args)
		})
	}
}

func TestPrint_CommandFailure(t *testing.T) {
	s := New(t.TempDir(), "lp", zerolog.Nop())
	var calls []call
	s.run = fakeRun(&calls, "lp: no default destination", errors.New("exit status 1"))

	job, err := s.Print(context.Background(), []byte("x"), "A4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrintFailed)
	assert.False(t, job.Sent)

	_, statErr := os.Stat(job.Path)
	assert.NoError(t, statErr, "spooled file is kept after a failed print")
}

func TestPrint_UniqueJobs(t *testing.T) {
	s := New(t.TempDir(), "", zerolog.Nop())
	a, err := s.Print(context.Background(), []byte("a"), "A4")
	require.NoError(t, err)
	b, err := s.Print(context.Background(), []byte("b"), "A4")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Path, b.Path)
}
