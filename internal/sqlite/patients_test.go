package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mesh-intelligence/clinic/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patientNames(results []types.PatientSummary) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}

func TestPatients_AddGetUpdate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 4, 9, 30, 0, 0, time.Local)
	fixClock(s, created)

	id, err := s.AddPatient(ctx, types.PatientInput{
		Name: "Asha", Age: 34, Gender: types.GenderFemale, Phone: "9876",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	p, err := s.GetPatient(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Name)
	assert.Equal(t, 34, p.Age)
	assert.Equal(t, types.GenderFemale, p.Gender)
	assert.Equal(t, "9876", p.Phone)
	assert.True(t, created.Equal(p.CreatedAt))

	fixClock(s, created.AddDate(1, 0, 0))
	ok, err := s.UpdatePatient(ctx, id, types.PatientInput{
		Name: "Asha K", Age: 35, Gender: types.GenderFemale, Phone: "1111",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	p, err = s.GetPatient(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Asha K", p.Name)
	assert.Equal(t, 35, p.Age)
	assert.Equal(t, "1111", p.Phone)
	assert.True(t, created.Equal(p.CreatedAt), "update must not touch created_at")
}

func TestPatients_MissingID(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.GetPatient(ctx, 404)
	assert.ErrorIs(t, err, types.ErrNotFound)

	ok, err := s.UpdatePatient(ctx, 404, types.PatientInput{Name: "Ghost"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeletePatient(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPatients_DuplicatesAllowed(t *testing.T) {
	s := setupStore(t)
	a := addPatient(t, s, "Ravi", "555")
	b := addPatient(t, s, "Ravi", "555")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, countRows(t, s, "patients"))
}

func TestSearchPatients_Matching(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	stepClock(s, time.Date(2026, 1, 1, 8, 0, 0, 0, time.Local))

	addPatient(t, s, "Anil", "9000")
	addPatient(t, s, "Susan", "+1-555-1234")
	addPatient(t, s, "ANITA", "7000")
	addPatient(t, s, "50%_off", "1")
	addPatient(t, s, "Émile", "8000")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"name prefix is case-insensitive", "an", []string{"ANITA", "Anil"}},
		{"name infix does not match", "san", []string{}},
		{"phone substring", "555", []string{"Susan"}},
		{"surrounding whitespace is ignored", "  anil ", []string{"Anil"}},
		{"percent matches literally", "50%", []string{"50%_off"}},
		{"underscore matches literally", "a_", []string{}},
		{"no match", "zz", []string{}},
		{"non-ASCII name folds case", "é", []string{"Émile"}},
		{"non-ASCII query folds case", "ÉMI", []string{"Émile"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.SearchPatients(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, patientNames(results))
		})
	}
}

func TestSearchPatients_OrderedByLastActivity(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	stepClock(s, time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local))

	a := addPatient(t, s, "Alpha", "1")
	b := addPatient(t, s, "Bravo", "2")
	addPatient(t, s, "Charlie", "3")

	results, err := s.SearchPatients(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Bravo", "Alpha"}, patientNames(results))
	for _, r := range results {
		assert.Nil(t, r.LastVisit, "%s has no visits", r.Name)
	}

	_, err = s.SavePrescription(ctx, types.PrescriptionDraft{
		PatientID: a, Diagnosis: "Fever",
		Medicines: []types.Medicine{{Name: "PARACETAMOL", Dosage: "1-0-1", Duration: "3 Days", Instruction: "After Food"}},
	})
	require.NoError(t, err)

	results, err = s.SearchPatients(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Charlie", "Bravo"}, patientNames(results))
	require.NotNil(t, results[0].LastVisit)

	_, err = s.SaveCertificate(ctx, types.CertificateDraft{
		PatientID: b, Diagnosis: "Flu", StartDate: "2026-03-01", EndDate: "2026-03-03",
	})
	require.NoError(t, err)

	results, err = s.SearchPatients(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "Alpha", "Charlie"}, patientNames(results))
}

func TestSearchPatients_BlankQueryLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	stepClock(s, time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local))

	for i := 0; i < recentPatientsLimit+5; i++ {
		addPatient(t, s, fmt.Sprintf("Patient %02d", i), "000")
	}

	results, err := s.SearchPatients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, results, recentPatientsLimit)
	assert.Equal(t, "Patient 34", results[0].Name)

	results, err = s.SearchPatients(ctx, "patient")
	require.NoError(t, err)
	assert.Len(t, results, recentPatientsLimit+5, "filtered search is unlimited")
}

func TestDeletePatient_Cascades(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	doomed := addPatient(t, s, "Doomed", "1")
	kept := addPatient(t, s, "Kept", "2")

	for _, pid := range []int64{doomed, kept} {
		_, err := s.SavePrescription(ctx, types.PrescriptionDraft{
			PatientID: pid, Diagnosis: "Cold",
			Medicines: []types.Medicine{
				{Name: "CETIRIZINE", Dosage: "0-0-1", Duration: "5 Days", Instruction: "After Food"},
				{Name: "STEAM", Dosage: "", Duration: "", Instruction: ""},
			},
		})
		require.NoError(t, err)
		_, err = s.SaveCertificate(ctx, types.CertificateDraft{
			PatientID: pid, Diagnosis: "Cold", StartDate: "2026-01-01", EndDate: "2026-01-02",
		})
		require.NoError(t, err)
	}

	ok, err := s.DeletePatient(ctx, doomed)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.GetPatient(ctx, doomed)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, 1, countRows(t, s, "patients"))
	assert.Equal(t, 1, countRows(t, s, "prescriptions"))
	assert.Equal(t, 2, countRows(t, s, "prescription_items"))
	assert.Equal(t, 1, countRows(t, s, "certificates"))
	assert.Equal(t, 2, countRows(t, s, "inventory"), "inventory is not owned by patients")

	history, err := s.PatientHistory(ctx, kept)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
