package alert

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var exportHeader = []string{"employee_id", "kind", "severity", "triggered_at", "value", "threshold", "detail"}

// WriteCSV writes alerts as CSV with a header row.
func WriteCSV(w io.Writer, alerts []Alert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write alert header: %w", err)
	}
	for _, a := range alerts {
		row := []string{
			a.EmployeeID,
			string(a.Kind),
			string(a.Severity),
			a.TriggeredAt.UTC().Format(time.RFC3339),
			strconv.FormatFloat(a.Value, 'f', 4, 64),
			strconv.FormatFloat(a.Threshold, 'f', 4, 64),
			a.Detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write alert row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
