package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// DefaultInstruction is the instruction given to medicines added without one.
const DefaultInstruction = "After Food"

// Medicine is one line of a draft prescription or template.
type Medicine struct {
	Name        string `json:"name"`
	Dosage      string `json:"dosage"`
	Duration    string `json:"duration"`
	Instruction string `json:"instruction"`
}

// UnmarshalJSON accepts numbers where strings are expected, since older
// template blobs stored durations as bare numbers. Unknown fields are ignored.
func (m *Medicine) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        flexString `json:"name"`
		Dosage      flexString `json:"dosage"`
		Duration    flexString `json:"duration"`
		Instruction flexString `json:"instruction"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Medicine{
		Name:        string(raw.Name),
		Dosage:      string(raw.Dosage),
		Duration:    string(raw.Duration),
		Instruction: string(raw.Instruction),
	}
	return nil
}

// flexString decodes a JSON string, number, or boolean into its text form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

// PrescriptionDraft is the input to SavePrescription. Medicines are stored in
// the given order.
type PrescriptionDraft struct {
	PatientID int64      `json:"patientId"`
	Diagnosis string     `json:"diagnosis"`
	Medicines []Medicine `json:"medicines"`
}

// Prescription is a saved prescription header.
type Prescription struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	Diagnosis string    `json:"diagnosis"`
	Date      time.Time `json:"date"`
}

// PrescriptionItem is one stored medicine line. Its text is independent of
// later inventory changes.
type PrescriptionItem struct {
	ID             int64  `json:"id"`
	PrescriptionID int64  `json:"prescription_id"`
	Medicine       string `json:"medicine"`
	Dosage         string `json:"dosage"`
	Duration       string `json:"duration"`
	Instruction    string `json:"instruction"`
}
