// Package document renders printable prescription and medical certificate
// pages as HTML. Rendering is pure: callers pass stored records, the clinic
// settings, and the instant to print as of.
package document

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.html"))

// Fallbacks used when a header setting is blank.
const (
	DefaultClinicName = "Clinic"
	DefaultDoctorName = "Doctor"
)

// Header is the letterhead shared by every printed page.
type Header struct {
	ClinicName    string
	Place         string
	DoctorName    string
	Qualification string
	Speciality    string
	RegNumber     string
	Phone         string
	Email         string
}

// Title is the clinic name followed by the place, when one is known.
func (h Header) Title() string {
	if h.Place == "" {
		return h.ClinicName
	}
	return h.ClinicName + ", " + h.Place
}

// SpecialityLine joins the speciality and registration number.
func (h Header) SpecialityLine() string {
	switch {
	case h.RegNumber == "":
		return h.Speciality
	case h.Speciality == "":
		return "Reg. No: " + h.RegNumber
	default:
		return h.Speciality + ", Reg. No: " + h.RegNumber
	}
}

// NewHeader builds the letterhead from settings. The place is the first
// comma-separated part of the address.
func NewHeader(s types.Settings) Header {
	address := s.Get(types.SettingAddress, "")
	place := strings.TrimSpace(strings.SplitN(address, ",", 2)[0])
	return Header{
		ClinicName:    s.Get(types.SettingClinicName, DefaultClinicName),
		Place:         place,
		DoctorName:    s.Get(types.SettingDoctorName, DefaultDoctorName),
		Qualification: s.Get(types.SettingQualification, ""),
		Speciality:    s.Get(types.SettingSpeciality, ""),
		RegNumber:     s.Get(types.SettingRegNumber, ""),
		Phone:         s.Get(types.SettingPhone, ""),
		Email:         s.Get(types.SettingEmail, ""),
	}
}

// Scale holds the CSS sizes for one paper size.
type Scale struct {
	Paper       string
	Padding     string
	H1          string
	H2          string
	Body        string
	Title       string
	Details     string
	Content     string
	Certificate string
	TableHeader string
	RowPadding  string
}

var scales = map[string]Scale{
	types.PaperA4: {
		Paper: types.PaperA4, Padding: "15mm", H1: "18pt", H2: "13pt", Body: "9pt", Title: "15pt",
		Details: "11pt", Content: "10pt", Certificate: "13pt", TableHeader: "8pt", RowPadding: "10px",
	},
	types.PaperA5: {
		Paper: types.PaperA5, Padding: "10mm", H1: "15pt", H2: "11pt", Body: "8pt", Title: "13pt",
		Details: "10pt", Content: "9pt", Certificate: "11pt", TableHeader: "6pt", RowPadding: "6px",
	},
}

// ScaleFor returns the sizes for the configured paper size.
func ScaleFor(s types.Settings) Scale {
	return scales[s.PaperSize()]
}

// Display date formats.
const (
	shortDate = "02-01-2006"
	longDate  = "2 January 2006"
	clockTime = "3:04 PM"
)

func render(w io.Writer, name string, data any) error {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	return nil
}
