package document

import (
	"io"
	"time"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// PrescriptionInput is what a printed prescription shows.
type PrescriptionInput struct {
	Patient   types.Patient
	Diagnosis string
	Medicines []types.Medicine
	IssuedAt  time.Time
}

type prescriptionPage struct {
	Header      Header
	Scale       Scale
	PatientName string
	Age         int
	Gender      types.Gender
	Issued      string
	Diagnosis   string
	Medicines   []types.Medicine
}

// RenderPrescription writes the prescription page for in to w. The age shown
// is the patient's live age at IssuedAt.
func RenderPrescription(w io.Writer, in PrescriptionInput, s types.Settings) error {
	issued := in.IssuedAt.In(time.Local)
	return render(w, "prescription.html", prescriptionPage{
		Header:      NewHeader(s),
		Scale:       ScaleFor(s),
		PatientName: in.Patient.Name,
		Age:         LiveAge(in.Patient.Age, in.Patient.CreatedAt, issued),
		Gender:      in.Patient.Gender,
		Issued:      issued.Format(shortDate) + ", " + issued.Format(clockTime),
		Diagnosis:   in.Diagnosis,
		Medicines:   in.Medicines,
	})
}

// MedicinesFromItems converts stored prescription items back into the
// medicine lines a page prints.
func MedicinesFromItems(items []types.PrescriptionItem) []types.Medicine {
	meds := make([]types.Medicine, len(items))
	for i, it := range items {
		meds[i] = types.Medicine{
			Name:        it.Medicine,
			Dosage:      it.Dosage,
			Duration:    it.Duration,
			Instruction: it.Instruction,
		}
	}
	return meds
}
