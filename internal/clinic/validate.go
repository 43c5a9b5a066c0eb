package clinic

import (
	"strings"

	"github.com/mesh-intelligence/clinic/internal/sqlite"
	"github.com/mesh-intelligence/clinic/pkg/types"
)

// MaxAge bounds the recorded patient age.
const MaxAge = 150

// cleanPatient trims a patient form and checks its required fields.
func cleanPatient(in types.PatientInput) (types.PatientInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" {
		return in, types.Invalid("name", "is required")
	}
	if in.Age < 0 || in.Age > MaxAge {
		return in, types.Invalid("age", "must be between 0 and %d", MaxAge)
	}
	if !in.Gender.Valid() {
		return in, types.Invalid("gender", "must be Male, Female, or Other")
	}
	return in, nil
}

// CleanDiagnosis trims surrounding space and one trailing comma, which the
// diagnosis autocomplete leaves behind.
func CleanDiagnosis(d string) string {
	d = strings.TrimSpace(d)
	d = strings.TrimSuffix(d, ",")
	return strings.TrimSpace(d)
}

// FormatDuration renders a bare number of days as "N Days" and returns
// anything else trimmed but unchanged.
func FormatDuration(d string) string {
	d = strings.TrimSpace(d)
	if isNumber(d) {
		return d + " Days"
	}
	return d
}

// isNumber reports whether s is a non-negative decimal such as "5" or "1.5".
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// cleanMedicines drops rows without a name and normalizes the rest.
func cleanMedicines(meds []types.Medicine) []types.Medicine {
	out := make([]types.Medicine, 0, len(meds))
	for _, m := range meds {
		name := sqlite.NormalizeMedicineName(m.Name)
		if name == "" {
			continue
		}
		out = append(out, types.Medicine{
			Name:        name,
			Dosage:      strings.TrimSpace(m.Dosage),
			Duration:    FormatDuration(m.Duration),
			Instruction: strings.TrimSpace(m.Instruction),
		})
	}
	return out
}

// cleanDraft validates a prescription before it is stored.
func cleanDraft(d types.PrescriptionDraft) (types.PrescriptionDraft, error) {
	if d.PatientID <= 0 {
		return d, types.Invalid("patientId", "is required")
	}
	d.Diagnosis = CleanDiagnosis(d.Diagnosis)
	if d.Diagnosis == "" {
		return d, types.Invalid("diagnosis", "is required")
	}
	d.Medicines = cleanMedicines(d.Medicines)
	if len(d.Medicines) == 0 {
		return d, types.Invalid("medicines", "at least one medicine is required")
	}
	return d, nil
}

// cleanCertificate validates a certificate before it is stored.
func cleanCertificate(d types.CertificateDraft) (types.CertificateDraft, error) {
	if d.PatientID <= 0 {
		return d, types.Invalid("patientId", "is required")
	}
	d.Diagnosis = CleanDiagnosis(d.Diagnosis)
	if d.Diagnosis == "" {
		return d, types.Invalid("diagnosis", "is required")
	}
	d.StartDate = strings.TrimSpace(d.StartDate)
	d.EndDate = strings.TrimSpace(d.EndDate)
	start, err := types.ParseDate(d.StartDate)
	if err != nil {
		return d, types.Invalid("startDate", "must be a YYYY-MM-DD date")
	}
	end, err := types.ParseDate(d.EndDate)
	if err != nil {
		return d, types.Invalid("endDate", "must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return d, types.Invalid("endDate", "must not be before the start date")
	}
	return d, nil
}

// cleanItem normalizes an inventory item for add and update.
func cleanItem(it types.InventoryItem) (types.InventoryItem, error) {
	it.Name = sqlite.NormalizeMedicineName(it.Name)
	if it.Name == "" {
		return it, types.Invalid("name", "is required")
	}
	it.DefaultDosage = strings.TrimSpace(it.DefaultDosage)
	it.DefaultDuration = FormatDuration(it.DefaultDuration)
	it.DefaultInstruction = strings.TrimSpace(it.DefaultInstruction)
	if it.DefaultInstruction == "" {
		it.DefaultInstruction = types.DefaultInstruction
	}
	return it, nil
}

// cleanTemplate validates a template; the name defaults to the diagnosis.
func cleanTemplate(t types.Template) (types.Template, error) {
	t.Diagnosis = CleanDiagnosis(t.Diagnosis)
	if t.Diagnosis == "" {
		return t, types.Invalid("diagnosis", "is required")
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		t.Name = t.Diagnosis
	}
	t.Medicines = cleanMedicines(t.Medicines)
	return t, nil
}

// cleanSettings trims values and checks the paper size.
func cleanSettings(s types.Settings) (types.Settings, error) {
	out := make(types.Settings, len(s))
	for k, v := range s {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, types.Invalid("key", "setting keys must not be empty")
		}
		out[k] = strings.TrimSpace(v)
	}
	if p, ok := out[types.SettingPaperSize]; ok && p != types.PaperA4 && p != types.PaperA5 {
		return nil, types.Invalid(types.SettingPaperSize, "must be A4 or A5")
	}
	return out, nil
}
