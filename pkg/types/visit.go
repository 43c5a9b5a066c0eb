package types

import (
	"encoding/json"
	"time"
)

// VisitKind discriminates entries in a patient's history.
type VisitKind string

const (
	VisitPrescription VisitKind = "RX"
	VisitCertificate  VisitKind = "CERT"
)

// Visit is one entry of a patient's history: either an RxVisit or a
// CertVisit. Use a type switch to reach kind-specific fields.
type Visit interface {
	Kind() VisitKind
	VisitID() int64
	VisitDate() time.Time
	VisitDiagnosis() string
	isVisit()
}

// RxVisit is a prescription in the history feed.
type RxVisit struct {
	ID        int64
	Diagnosis string
	Date      time.Time
}

func (v RxVisit) Kind() VisitKind        { return VisitPrescription }
func (v RxVisit) VisitID() int64         { return v.ID }
func (v RxVisit) VisitDate() time.Time   { return v.Date }
func (v RxVisit) VisitDiagnosis() string { return v.Diagnosis }
func (RxVisit) isVisit()                 {}

// CertVisit is an issued certificate in the history feed. Date is the issue
// time; StartDate and EndDate bound the rest period.
type CertVisit struct {
	ID        int64
	Diagnosis string
	Date      time.Time
	StartDate string
	EndDate   string
}

func (v CertVisit) Kind() VisitKind        { return VisitCertificate }
func (v CertVisit) VisitID() int64         { return v.ID }
func (v CertVisit) VisitDate() time.Time   { return v.Date }
func (v CertVisit) VisitDiagnosis() string { return v.Diagnosis }
func (CertVisit) isVisit()                 {}

// visitJSON is the flat wire shape the UI consumes.
type visitJSON struct {
	ID        int64     `json:"id"`
	Diagnosis string    `json:"diagnosis"`
	Date      time.Time `json:"date"`
	Type      VisitKind `json:"type"`
	StartDate *string   `json:"start_date"`
	EndDate   *string   `json:"end_date"`
}

func (v RxVisit) MarshalJSON() ([]byte, error) {
	return json.Marshal(visitJSON{ID: v.ID, Diagnosis: v.Diagnosis, Date: v.Date, Type: VisitPrescription})
}

func (v CertVisit) MarshalJSON() ([]byte, error) {
	start, end := v.StartDate, v.EndDate
	return json.Marshal(visitJSON{
		ID:        v.ID,
		Diagnosis: v.Diagnosis,
		Date:      v.Date,
		Type:      VisitCertificate,
		StartDate: &start,
		EndDate:   &end,
	})
}
