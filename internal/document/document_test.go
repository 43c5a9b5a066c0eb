package document

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestLiveAge(t *testing.T) {
	created := time.Date(2020, 3, 1, 10, 0, 0, 0, time.Local)
	tests := []struct {
		name    string
		stored  int
		created time.Time
		now     time.Time
		want    int
	}{
		{"same day", 30, created, created.Add(time.Hour), 30},
		{"just under a year", 30, created, created.AddDate(0, 11, 0), 30},
		{"one average year later", 30, created, created.Add(yearLength), 31},
		{"six years later", 30, created, time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local), 36},
		{"unknown creation", 30, time.Time{}, created, 30},
		{"clock behind creation", 30, created, created.AddDate(-2, 0, 0), 30},
		{"infant", 0, created, created.AddDate(2, 0, 1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LiveAge(tt.stored, tt.created, tt.now)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, tt.stored)
		})
	}
}

func TestNewHeader(t *testing.T) {
	h := NewHeader(types.Settings{})
	assert.Equal(t, DefaultClinicName, h.Title())
	assert.Equal(t, DefaultDoctorName, h.DoctorName)
	assert.Equal(t, "", h.SpecialityLine())

	h = NewHeader(types.Settings{
		types.SettingClinicName: "Sunrise Clinic",
		types.SettingAddress:    "Perinjanam, Thrissur",
		types.SettingSpeciality: "Consultant Physician",
		types.SettingRegNumber:  "12345",
	})
	assert.Equal(t, "Sunrise Clinic, Perinjanam", h.Title())
	assert.Equal(t, "Perinjanam", h.Place)
	assert.Equal(t, "Consultant Physician, Reg. No: 12345", h.SpecialityLine())

	h = NewHeader(types.Settings{types.SettingRegNumber: "9"})
	assert.Equal(t, "Reg. No: 9", h.SpecialityLine())
}

func TestScaleFor(t *testing.T) {
	assert.Equal(t, "15mm", ScaleFor(types.Settings{}).Padding)
	assert.Equal(t, types.PaperA5, ScaleFor(types.Settings{types.SettingPaperSize: "A5"}).Paper)
	assert.Equal(t, types.PaperA4, ScaleFor(types.Settings{types.SettingPaperSize: "Letter"}).Paper)
}

func TestRenderPrescription(t *testing.T) {
	var buf bytes.Buffer
	err := RenderPrescription(&buf, PrescriptionInput{
		Patient: types.Patient{
			Name: "Asha <b>", Age: 30, Gender: types.GenderFemale,
			CreatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local),
		},
		Diagnosis: "Viral Fever",
		Medicines: []types.Medicine{
			{Name: "PARACETAMOL", Dosage: "1-0-1", Duration: "5 Days", Instruction: "After Food"},
			{Name: "CETIRIZINE", Dosage: "0-0-1", Duration: "3 Days", Instruction: "After Food"},
		},
		IssuedAt: time.Date(2026, 2, 15, 22, 30, 0, 0, time.Local),
	}, types.Settings{types.SettingPaperSize: types.PaperA5, types.SettingDoctorName: "Dr. Rao"})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "size: A5")
	assert.Contains(t, html, "Dr. Rao")
	assert.Contains(t, html, "Asha &lt;b&gt;")
	assert.Contains(t, html, "(32 / Female)")
	assert.Contains(t, html, "15-02-2026, 10:30 PM")
	assert.Contains(t, html, "<b>DIAGNOSIS:</b> Viral Fever")
	assert.Contains(t, html, "<td>1.</td>")
	assert.Contains(t, html, "<td>2.</td>")
	assert.Contains(t, html, `<td class="med-name">CETIRIZINE</td>`)
}

func TestMedicinesFromItems(t *testing.T) {
	meds := MedicinesFromItems([]types.PrescriptionItem{
		{ID: 1, Medicine: "ZINC", Dosage: "0-1-0", Duration: "10 Days", Instruction: "After Food"},
	})
	assert.Equal(t, []types.Medicine{{Name: "ZINC", Dosage: "0-1-0", Duration: "10 Days", Instruction: "After Food"}}, meds)
}

func TestRenderCertificate(t *testing.T) {
	settings := types.Settings{
		types.SettingDoctorName: "Dr. Iyer",
		types.SettingRegNumber:  "26315",
		types.SettingAddress:    "Thrissur, Kerala",
	}
	tests := []struct {
		name     string
		in       CertificateInput
		contains []string
		absent   []string
	}{
		{
			name: "current rest period",
			in: CertificateInput{
				Patient:   types.Patient{Name: "Ravi", Gender: types.GenderMale},
				Diagnosis: "Viral Fever", StartDate: "2026-10-15", EndDate: "2026-10-18",
				IssuedAt: time.Date(2026, 10, 17, 11, 0, 0, 0, time.Local),
			},
			contains: []string{
				"<strong>Mr. Ravi</strong> is under my treatment",
				"He is advised",
				"<strong>15 October 2026</strong> to <strong>18 October 2026</strong>",
				"(<strong>4</strong> days)",
				"<b>Place:</b> Thrissur",
				"17-10-2026",
				"Reg. No: 26315",
			},
			absent: []string{"residing/working"},
		},
		{
			name: "issued after the period",
			in: CertificateInput{
				Patient:   types.Patient{Name: "Lata", Gender: types.GenderFemale},
				Diagnosis: "Gastritis", StartDate: "2026-10-01", EndDate: "2026-10-01",
				IssuedAt:  time.Date(2026, 10, 2, 9, 0, 0, 0, time.Local),
				Residency: "  Acme Mills ",
			},
			contains: []string{
				"<strong>Mrs. Lata</strong> residing/working at <strong>Acme Mills</strong> was under",
				"She was advised",
				"(<strong>1</strong> days)",
			},
		},
		{
			name: "issued on the last day",
			in: CertificateInput{
				Patient:   types.Patient{Name: "Sam", Gender: types.GenderOther},
				Diagnosis: "Sprain", StartDate: "2026-10-10", EndDate: "2026-10-12",
				IssuedAt: time.Date(2026, 10, 12, 23, 59, 0, 0, time.Local),
			},
			contains: []string{"Mr./Mrs. Sam</strong> is under", "He/She is advised"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderCertificate(&buf, tt.in, settings))
			html := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, html, unwanted)
			}
		})
	}
}

func TestRenderCertificate_BadDates(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCertificate(&buf, CertificateInput{StartDate: "17/10/2026", EndDate: "2026-10-18"}, nil)
	assert.Error(t, err)
	err = RenderCertificate(&buf, CertificateInput{StartDate: "2026-10-17", EndDate: ""}, nil)
	assert.Error(t, err)
}

func TestRestDaysAndTense(t *testing.T) {
	assert.Equal(t, 1, RestDays(day(2026, 1, 1), day(2026, 1, 1)))
	assert.Equal(t, 3, RestDays(day(2026, 2, 27), day(2026, 3, 1)))
	assert.Equal(t, 3, RestDays(day(2026, 3, 1), day(2026, 2, 27)))
	assert.Equal(t, "is", Tense(day(2026, 1, 1).Add(20*time.Hour), day(2026, 1, 1)))
	assert.Equal(t, "was", Tense(day(2026, 1, 2), day(2026, 1, 1)))
}
