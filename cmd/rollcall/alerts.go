package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/alert"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
)

func newAlertsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Evaluate every employee against the alert thresholds",
		Example: `  rollcall alerts
  rollcall alerts --format csv > alerts.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatCSV {
				return fmt.Errorf("unknown format %q (use %s or %s)", format, formatTable, formatCSV)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			alerts, err := a.Alerts.EvaluateAll(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			if format == formatCSV {
				return alert.WriteCSV(cmd.OutOrStdout(), alerts)
			}
			return writeAlertTable(cmd.OutOrStdout(), alerts)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table or csv")
	return cmd
}

func writeAlertTable(w io.Writer, alerts []alert.Alert) error {
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(w, "No alerts.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tKIND\tSEVERITY\tVALUE\tTHRESHOLD\tDETAIL")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			a.EmployeeID, a.Kind, a.Severity, a.Value, a.Threshold, a.Detail)
	}
	return tw.Flush()
}
