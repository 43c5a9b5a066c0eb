package types

import "time"

// Gender values accepted for a patient.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Patient is a registered patient. Age is the age recorded at creation and is
// never updated as time passes.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    Gender    `json:"gender"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// PatientInput carries the mutable patient fields for add and update.
type PatientInput struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
	Phone  string `json:"phone"`
}

// PatientSummary is a search result row. LastVisit is the latest prescription
// date or certificate issue time, nil when the patient has neither.
type PatientSummary struct {
	Patient
	LastVisit *time.Time `json:"last_visit"`
}

// LastActive returns LastVisit, falling back to CreatedAt.
func (s PatientSummary) LastActive() time.Time {
	if s.LastVisit != nil && s.LastVisit.After(s.CreatedAt) {
		return *s.LastVisit
	}
	return s.CreatedAt
}
