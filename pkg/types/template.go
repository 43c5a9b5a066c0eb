package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Template is a reusable diagnosis with its medicine list. ID zero means new.
type Template struct {
	ID        int64      `json:"id,omitempty"`
	Name      string     `json:"name"`
	Diagnosis string     `json:"diagnosis"`
	Medicines []Medicine `json:"medicines"`
}

// EncodeMedicines serializes a medicine list to the persisted blob form, a
// JSON array of {name, dosage, duration, instruction} objects.
func EncodeMedicines(meds []Medicine) (string, error) {
	if meds == nil {
		meds = []Medicine{}
	}
	data, err := json.Marshal(meds)
	if err != nil {
		return "", fmt.Errorf("encoding medicines: %w", err)
	}
	return string(data), nil
}

// DecodeMedicines parses a persisted medicine blob. An empty blob decodes to
// an empty list.
func DecodeMedicines(blob string) ([]Medicine, error) {
	if strings.TrimSpace(blob) == "" {
		return []Medicine{}, nil
	}
	var meds []Medicine
	if err := json.Unmarshal([]byte(blob), &meds); err != nil {
		return nil, fmt.Errorf("decoding medicines: %w", err)
	}
	if meds == nil {
		meds = []Medicine{}
	}
	return meds, nil
}
