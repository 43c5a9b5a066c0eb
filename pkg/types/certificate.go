package types

import "time"

// CertificateDraft is the input to SaveCertificate. StartDate and EndDate are
// YYYY-MM-DD strings.
type CertificateDraft struct {
	PatientID int64  `json:"patientId"`
	Diagnosis string `json:"diagnosis"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Certificate is an issued medical certificate covering a rest period.
type Certificate struct {
	ID        int64     `json:"id"`
	PatientID int64     `json:"patient_id"`
	Diagnosis string    `json:"diagnosis"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}
