package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/sotuphap-angiang/vbtrack/internal/dashboard"
	"github.com/sotuphap-angiang/vbtrack/internal/report"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		asJSON bool
		year   int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show area, handler and overall progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, year, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().IntVar(&year, "year", 0, "only count documents of this year")
	return cmd
}

func runReport(cmd *cobra.Command, year int, asJSON bool) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	d, err := dashboard.Report(cmd.Context(), store.New(a.db), a.cfg.Report, store.DocumentFilter{Year: year})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	fmt.Fprint(out, formatReport(d))
	return nil
}

func formatReport(d report.Dashboard) string {
	var buf bytes.Buffer

	for _, g := range d.Groups {
		fmt.Fprintf(&buf, "%s (%s)\n", g.Title, g.DocType)
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tAREA\tHANDLER\tPENDING\tREPEAL\tISSUANCE\tCOMPLETED")
		for _, r := range g.Areas {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\n",
				r.Ordinal, truncate(r.Name, 48), r.Handler, r.Pending, r.Repeal, r.Issuance, r.Completed())
		}
		t := g.Totals
		fmt.Fprintf(w, "\tTOTAL\t\t%d\t%d\t%d\t%d (%d%%)\n", t.Pending, t.Repeal, t.Issuance, t.Completed, t.Percent)
		w.Flush()
		buf.WriteString("\n")
	}

	o := d.Overall
	fmt.Fprintf(&buf, "Overall: %d completed of %d (%d%%), %d pending\n\n", o.Completed, o.Total, o.Percent, o.Pending)

	if len(d.Handlers) > 0 {
		buf.WriteString("Handlers\n")
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPENDING\tCOMPLETED\tTOTAL")
		for _, h := range d.Handlers {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", h.Name, h.Pending, h.Completed, h.Total())
		}
		w.Flush()
	}
	return buf.String()
}
