package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// table writes rows as aligned columns under header.
func table(w io.Writer, header string, rows func(tw io.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func shortDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(types.DateLayout)
}

func lastVisit(p types.PatientSummary) string {
	if p.LastVisit == nil {
		return "-"
	}
	return shortDate(*p.LastVisit)
}

// orDash shows empty values as a dash in tables.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
