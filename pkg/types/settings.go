package types

// Settings is the flat key/value configuration stored alongside clinic data.
// Absent keys read back as absent; callers supply defaults.
type Settings map[string]string

// Well-known settings keys.
const (
	SettingClinicName    = "clinicName"
	SettingDoctorName    = "doctorName"
	SettingQualification = "qualification"
	SettingSpeciality    = "speciality"
	SettingRegNumber     = "regNumber"
	SettingAddress       = "address"
	SettingPhone         = "phone"
	SettingEmail         = "email"
	SettingPaperSize     = "paperSize"
)

// Paper sizes understood by the print renderer.
const (
	PaperA4 = "A4"
	PaperA5 = "A5"
)

// Get returns the value for key, or def when the key is absent or empty.
func (s Settings) Get(key, def string) string {
	if v, ok := s[key]; ok && v != "" {
		return v
	}
	return def
}

// PaperSize returns the configured paper size, defaulting to A4.
func (s Settings) PaperSize() string {
	if s.Get(SettingPaperSize, PaperA4) == PaperA5 {
		return PaperA5
	}
	return PaperA4
}
