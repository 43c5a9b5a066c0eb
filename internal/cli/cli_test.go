package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// testDirs isolates a test from the user's real config and data.
type testDirs struct {
	config string
	data   string
}

func setupDirs(t *testing.T) testDirs {
	t.Helper()
	base := t.TempDir()
	t.Setenv("CLINIC_LISTEN", "")
	t.Setenv("CLINIC_LOG_LEVEL", "")
	t.Setenv("CLINIC_PRINT_COMMAND", "")
	return testDirs{config: filepath.Join(base, "config"), data: filepath.Join(base, "data")}
}

func run(t *testing.T, d testDirs, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-dir", d.config, "--data-dir", d.data}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, d testDirs, args ...string) string {
	t.Helper()
	out, err := run(t, d, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	out := mustRun(t, setupDirs(t), "version")
	assert.Contains(t, out, "clinic v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	d := setupDirs(t)

	out := mustRun(t, d, "init")
	assert.Contains(t, out, "Clinic initialized")
	assert.FileExists(t, filepath.Join(d.config, "config.yaml"))
	assert.FileExists(t, filepath.Join(d.data, types.DatabaseFileName))

	// Idempotent; an edited config.yaml is left alone.
	custom := []byte("listen: 127.0.0.1:9999\n")
	require.NoError(t, os.WriteFile(filepath.Join(d.config, "config.yaml"), custom, 0o644))
	out = mustRun(t, d, "--json", "init")
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.EqualValues(t, 2, res["schemaVersion"])

	got, err := os.ReadFile(filepath.Join(d.config, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestPatientCommands(t *testing.T) {
	d := setupDirs(t)

	out := mustRun(t, d, "--json", "patient", "add", "--name", "Asha", "--age", "30", "--gender", "Female", "--phone", "9000000001")
	var added map[string]int64
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	id := added["id"]
	require.Positive(t, id)

	_, err := run(t, d, "patient", "add", "--name", " ", "--age", "30", "--gender", "Female")
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Equal(t, exitUserError, exitCode(err))

	mustRun(t, d, "patient", "update", "1", "--phone", "9111111111")

	out = mustRun(t, d, "--json", "patient", "list", "asha")
	var list []types.PatientSummary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Name, "unchanged fields are kept")
	assert.Equal(t, 30, list[0].Age)
	assert.Equal(t, "9111111111", list[0].Phone)

	out = mustRun(t, d, "patient", "list")
	assert.Contains(t, out, "LAST VISIT")
	assert.Contains(t, out, "Asha")

	out = mustRun(t, d, "patient", "history", "1")
	assert.Contains(t, out, "DIAGNOSIS")

	out = mustRun(t, d, "patient", "delete", "1")
	assert.Contains(t, out, "Deleted patient 1")

	_, err = run(t, d, "patient", "delete", "1")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = run(t, d, "patient", "history", "abc")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestMedicineCommands(t *testing.T) {
	d := setupDirs(t)

	mustRun(t, d, "medicine", "add", "dolo 650", "--dosage", "1-0-1", "--duration", "3")
	_, err := run(t, d, "medicine", "add", "DOLO 650")
	assert.ErrorIs(t, err, types.ErrDuplicateMedicine)

	out := mustRun(t, d, "--json", "medicine", "bulk", "zinc", "ors", "Dolo 650")
	assert.JSONEq(t, `{"count":2}`, out)

	xlsx := filepath.Join(t.TempDir(), "inventory.xlsx")
	mustRun(t, d, "medicine", "export", xlsx)
	assert.FileExists(t, xlsx)

	other := setupDirs(t)
	out = mustRun(t, other, "--json", "medicine", "import", xlsx)
	assert.JSONEq(t, `{"count":3}`, out)

	out = mustRun(t, other, "--json", "medicine", "list")
	var items []types.InventoryItem
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"DOLO 650", "ORS", "ZINC"}, names)

	out = mustRun(t, d, "medicine", "list")
	assert.Contains(t, out, "3 Days")
}

func TestSettingsCommands(t *testing.T) {
	d := setupDirs(t)

	mustRun(t, d, "settings", "set", "clinicName=Sunrise Clinic", "paperSize=A5")
	out := mustRun(t, d, "settings", "get", "clinicName")
	assert.Equal(t, "Sunrise Clinic\n", out)

	out = mustRun(t, d, "--json", "settings", "get")
	var got types.Settings
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, types.PaperA5, got.PaperSize())

	_, err := run(t, d, "settings", "set", "paperSize=Letter")
	assert.True(t, types.IsValidation(err))
	_, err = run(t, d, "settings", "set", "novalue")
	assert.True(t, types.IsValidation(err))
	_, err = run(t, d, "settings", "get", "email")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestStatsAndBackup(t *testing.T) {
	d := setupDirs(t)
	mustRun(t, d, "patient", "add", "--name", "Asha", "--age", "30", "--gender", "Female")

	out := mustRun(t, d, "--json", "stats")
	var stats types.DashboardStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 1, stats.TotalPatients)
	assert.Len(t, stats.WeeklyStats, 7)

	out = mustRun(t, d, "stats")
	assert.Contains(t, out, "Patients:          1")
	assert.Contains(t, out, "MONTH")

	dst := filepath.Join(t.TempDir(), "copy.db")
	out = mustRun(t, d, "--json", "backup", dst)
	var res types.ExportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, dst, res.Path)
	assert.FileExists(t, dst)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"validation", types.Invalid("name", "required"), exitUserError},
		{"not found", types.ErrNotFound, exitUserError},
		{"duplicate", types.ErrDuplicateMedicine, exitUserError},
		{"other", errors.New("disk full"), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, setupDirs(t), "frobnicate")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown command"))
}
