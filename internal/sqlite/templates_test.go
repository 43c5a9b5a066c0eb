package sqlite

import (
	"context"
	"testing"

	"github.com/mesh-intelligence/clinic/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_RoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	meds := []types.Medicine{
		{Name: "PARACETAMOL", Dosage: "1-0-1", Duration: "5 Days", Instruction: "After Food"},
		{Name: "CETIRIZINE", Dosage: "0-0-1", Duration: "3 Days", Instruction: "After Food"},
	}
	id, found, err := s.SaveTemplate(ctx, types.Template{Name: "Viral Fever", Diagnosis: "Viral Fever", Medicines: meds})
	require.NoError(t, err)
	assert.True(t, found)

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "Viral Fever", list[0].Name)
	assert.Equal(t, meds, list[0].Medicines)

	// Update in place.
	updated, found, err := s.SaveTemplate(ctx, types.Template{ID: id, Name: "Fever", Diagnosis: "Fever", Medicines: meds[:1]})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, updated)
	list, err = s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Fever", list[0].Name)
	assert.Len(t, list[0].Medicines, 1)

	_, found, err = s.SaveTemplate(ctx, types.Template{ID: id + 100, Name: "Ghost"})
	require.NoError(t, err, "an unknown id is not an error")
	assert.False(t, found)
	assert.Equal(t, 1, countRows(t, s, "templates"), "an unknown id is not inserted")

	ok, err := s.DeleteTemplate(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeleteTemplate(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err = s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListTemplates_ToleratesStoredBlobs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	rows := []struct{ name, blob string }{
		{"B legacy", `[{"name":"ORS","dosage":"SOS","duration":3,"instruction":"After Food","stock":12}]`},
		{"C broken", `{not json`},
		{"A empty", ``},
	}
	for _, r := range rows {
		_, err := s.db.Exec("INSERT INTO templates (name, diagnosis, medicines) VALUES (?, ?, ?)", r.name, r.name, r.blob)
		require.NoError(t, err)
	}

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "A empty", list[0].Name)
	assert.Empty(t, list[0].Medicines)

	assert.Equal(t, "B legacy", list[1].Name)
	require.Len(t, list[1].Medicines, 1)
	assert.Equal(t, "3", list[1].Medicines[0].Duration)

	assert.Equal(t, "C broken", list[2].Name)
	assert.NotNil(t, list[2].Medicines)
	assert.Empty(t, list[2].Medicines)
}
