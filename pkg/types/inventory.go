package types

// InventoryItem is a known medicine with the defaults offered when it is
// picked for a prescription. Name is unique and stored upper-case by writers.
type InventoryItem struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	DefaultDosage      string `json:"default_dosage"`
	DefaultDuration    string `json:"default_duration"`
	DefaultInstruction string `json:"default_instruction"`
}
