package main

import (
	"fmt"
	"os"

	"github.com/sotuphap-angiang/vbtrack/internal/importer"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"github.com/sotuphap-angiang/vbtrack/internal/workbook"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "export <out.xlsx>",
		Short: "Write all documents to a workbook in the import layout",
		Long: `Writes one sheet per configured partition using the same headers the
importer expects, so the exported file can be edited and imported again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], year)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "only export documents of this year")
	return cmd
}

func runExport(cmd *cobra.Command, path string, year int) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	docs, err := store.New(a.db).ListDocuments(cmd.Context(), store.DocumentFilter{Year: year})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	sheets := importer.ExportSheets(docs, a.cfg.Import.Sheets)
	if err := workbook.Write(f, sheets); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d documents in %d sheets to %s\n", len(docs), len(sheets), path)
	return nil
}
