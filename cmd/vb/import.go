package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/sotuphap-angiang/vbtrack/internal/importer"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"github.com/sotuphap-angiang/vbtrack/internal/workbook"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		yes       bool
		checkOnly bool
	)

	cmd := &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Replace all documents with the contents of a workbook",
		Long: `Validates every configured sheet of the workbook, then deletes all
documents and agencies and re-creates them from the workbook rows.
Nothing is deleted when validation fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkOnly {
				return runImportCheck(cmd, args[0])
			}
			return runImport(cmd, args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "only validate the workbook, change nothing")
	cmd.AddCommand(newImportHistoryCmd())
	return cmd
}

func runImport(cmd *cobra.Command, path string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}

	if !skipConfirm {
		if !confirm(cmd, "Importing replaces every document and agency in the database.") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	runner, err := a.runner()
	if err != nil {
		return err
	}
	res, err := runner.Run(cmd.Context(), importer.Source{
		Name:    filepath.Base(path),
		Data:    data,
		Trigger: importer.TriggerCLI,
	})
	if err != nil {
		return err
	}

	for _, line := range res.Logs {
		fmt.Fprintln(out, line)
	}
	if res.Error {
		return fmt.Errorf("import %s: %s", filepath.Base(path), res.State)
	}
	return nil
}

// runImportCheck validates a workbook without touching the database.
func runImportCheck(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	wb, err := workbook.Open(path)
	if err != nil {
		return err
	}
	defer wb.Close()

	violations, err := importer.Validate(wb, cfg.Import.Sheets)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		fmt.Fprintf(out, "%s: all %d sheets are valid\n", filepath.Base(path), len(cfg.Import.Sheets))
		return nil
	}
	for _, v := range violations {
		fmt.Fprintln(out, v.String())
	}
	return errors.New("workbook has validation errors")
}

func newImportHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent import runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func runImportHistory(cmd *cobra.Command, limit int) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	runs, err := store.New(a.db).ListImportRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No imports yet.")
		return nil
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tTRIGGER\tSTATE\tFILE\tDOCS\tAGENCIES")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Trigger, r.State,
			truncate(r.FileName, 40), r.Documents, r.AgenciesCreated)
	}
	w.Flush()
	fmt.Fprint(out, buf.String())
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
