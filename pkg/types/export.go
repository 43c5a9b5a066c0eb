package types

// ExportResult describes the outcome of a database export. Cancelled is set
// when no destination was chosen; it is not an error.
type ExportResult struct {
	Path      string `json:"path,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
}
