package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "vbtrack.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vb",
		Short: "vbtrack: legal document issuance tracker",
		Long: `vbtrack tracks the drafting and issuance of resolutions and decisions:
workbook import, per-area and per-handler reporting, document and handler maintenance.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "path to vbtrack config file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newHandlerCmd())
	cmd.AddCommand(newDocumentCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDoctorCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vb %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
