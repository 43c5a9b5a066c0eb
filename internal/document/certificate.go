package document

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// CertificateInput is what a printed medical certificate shows. StartDate
// and EndDate are YYYY-MM-DD; Residency is optional free text.
type CertificateInput struct {
	Patient   types.Patient
	Diagnosis string
	StartDate string
	EndDate   string
	IssuedAt  time.Time
	Residency string
}

type certificatePage struct {
	Header      Header
	Scale       Scale
	Prefix      string
	PatientName string
	Residency   string
	Verb        string
	Pronoun     string
	Diagnosis   string
	Start       string
	End         string
	Days        int
	Issued      string
}

// RenderCertificate writes the certificate page for in to w. The wording is
// in the past tense when the certificate is issued after the rest period
// ended.
func RenderCertificate(w io.Writer, in CertificateInput, s types.Settings) error {
	start, err := types.ParseDate(in.StartDate)
	if err != nil {
		return fmt.Errorf("parsing start date: %w", err)
	}
	end, err := types.ParseDate(in.EndDate)
	if err != nil {
		return fmt.Errorf("parsing end date: %w", err)
	}
	issued := in.IssuedAt.In(time.Local)
	prefix, pronoun := Salutation(in.Patient.Gender)

	return render(w, "certificate.html", certificatePage{
		Header:      NewHeader(s),
		Scale:       ScaleFor(s),
		Prefix:      prefix,
		PatientName: in.Patient.Name,
		Residency:   strings.TrimSpace(in.Residency),
		Verb:        Tense(issued, end),
		Pronoun:     pronoun,
		Diagnosis:   in.Diagnosis,
		Start:       start.Format(longDate),
		End:         end.Format(longDate),
		Days:        RestDays(start, end),
		Issued:      issued.Format(shortDate),
	})
}

// Salutation returns the name prefix and pronoun for g.
func Salutation(g types.Gender) (prefix, pronoun string) {
	switch g {
	case types.GenderMale:
		return "Mr.", "He"
	case types.GenderFemale:
		return "Mrs.", "She"
	default:
		return "Mr./Mrs.", "He/She"
	}
}

// Tense returns "was" when the issue day falls after end, else "is".
func Tense(issued, end time.Time) string {
	day := time.Date(issued.Year(), issued.Month(), issued.Day(), 0, 0, 0, 0, end.Location())
	if day.After(end) {
		return "was"
	}
	return "is"
}

// RestDays counts the calendar days from start to end, both inclusive.
func RestDays(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	return int(math.Round(d.Hours()/24)) + 1
}
