package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/db"
	"github.com/sotuphap-angiang/vbtrack/internal/handler"
	"github.com/sotuphap-angiang/vbtrack/internal/importer"
	"github.com/sotuphap-angiang/vbtrack/internal/logging"
	"github.com/sotuphap-angiang/vbtrack/internal/notify"
	"github.com/sotuphap-angiang/vbtrack/internal/scheduler"
	"github.com/sotuphap-angiang/vbtrack/internal/workbook"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, database and scheduled workbook",
		Long:  "Runs diagnostic checks: config, database, schema, handlers, import schedule, scheduled workbook and notifications.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd)
		},
	}
}

type checkResult struct {
	name   string
	status string // "PASS", "FAIL", "WARN"
	detail string
}

func runDoctor(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "vbtrack Doctor")
	fmt.Fprintln(out, "==============")

	var results []checkResult

	path := cmd.Flag("config").Value.String()
	cfg, cfgResult := checkConfig(path)
	results = append(results, cfgResult)

	if cfg != nil {
		gormDB, dbResult := checkDatabase(cfg.Database)
		results = append(results, dbResult)
		if gormDB != nil {
			results = append(results, checkSchema(gormDB), checkHandlers(gormDB))
		} else {
			results = append(results, checkResult{"Schema", "FAIL", "skipped (no database)"})
		}
		results = append(results, checkSchedule(cfg.Import), checkWorkbook(cfg.Import), checkNotify(cfg.Notify))
	} else {
		results = append(results, checkResult{"Database", "FAIL", "skipped (no config)"})
	}

	passed, failed, warned := 0, 0, 0
	for _, r := range results {
		printCheckResult(out, r)
		switch r.status {
		case "PASS":
			passed++
		case "FAIL":
			failed++
		case "WARN":
			warned++
		}
	}

	fmt.Fprintf(out, "\n%d passed, %d failed, %d warning\n", passed, failed, warned)

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func printCheckResult(out io.Writer, r checkResult) {
	fmt.Fprintf(out, "[%s] %s: %s\n", r.status, r.name, r.detail)
}

func checkConfig(path string) (*config.Config, checkResult) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, checkResult{"Config file", "FAIL", fmt.Sprintf("%s: %v", path, err)}
	}
	return cfg, checkResult{"Config file", "PASS", path}
}

func checkDatabase(cfg config.DatabaseConfig) (*gorm.DB, checkResult) {
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, checkResult{"Database", "FAIL", err.Error()}
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, checkResult{"Database", "FAIL", fmt.Sprintf("get sql.DB: %v", err)}
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, checkResult{"Database", "FAIL", fmt.Sprintf("ping failed: %v", err)}
	}
	return gormDB, checkResult{"Database", "PASS", cfg.Driver + " reachable"}
}

func checkSchema(gormDB *gorm.DB) checkResult {
	var missing []string
	for _, m := range db.AllModels() {
		if !gormDB.Migrator().HasTable(m) {
			missing = append(missing, fmt.Sprintf("%T", m))
		}
	}
	if len(missing) > 0 {
		return checkResult{"Schema", "FAIL", fmt.Sprintf("missing tables for %v (run `vb db init`)", missing)}
	}
	return checkResult{"Schema", "PASS", fmt.Sprintf("%d tables", len(db.AllModels()))}
}

func checkHandlers(gormDB *gorm.DB) checkResult {
	hs, err := handler.List(gormDB, true)
	if err != nil {
		return checkResult{"Handlers", "FAIL", err.Error()}
	}
	if len(hs) == 0 {
		return checkResult{"Handlers", "WARN", "no active handlers"}
	}
	return checkResult{"Handlers", "PASS", fmt.Sprintf("%d active", len(hs))}
}

func checkSchedule(cfg config.ImportConfig) checkResult {
	if cfg.Schedule == "" {
		return checkResult{"Import schedule", "PASS", "disabled"}
	}
	s, err := scheduler.New(cfg, nil, logging.Discard())
	if err != nil {
		return checkResult{"Import schedule", "FAIL", err.Error()}
	}
	return checkResult{"Import schedule", "PASS", fmt.Sprintf("%q, next at %s", cfg.Schedule, s.Next(time.Now()).Format("2006-01-02 15:04"))}
}

func checkWorkbook(cfg config.ImportConfig) checkResult {
	if cfg.WorkbookPath == "" {
		return checkResult{"Scheduled workbook", "PASS", "none configured"}
	}
	wb, err := workbook.Open(cfg.WorkbookPath)
	if err != nil {
		return checkResult{"Scheduled workbook", "FAIL", err.Error()}
	}
	defer wb.Close()

	violations, err := importer.Validate(wb, cfg.Sheets)
	if err != nil {
		return checkResult{"Scheduled workbook", "FAIL", err.Error()}
	}
	if len(violations) > 0 {
		return checkResult{"Scheduled workbook", "WARN", fmt.Sprintf("%d validation problems; first: %s", len(violations), violations[0])}
	}
	return checkResult{"Scheduled workbook", "PASS", filepath.Base(cfg.WorkbookPath) + " is valid"}
}

func checkNotify(cfg config.NotifyConfig) checkResult {
	n, err := notify.FromConfig(cfg)
	if err != nil {
		return checkResult{"Notifications", "FAIL", err.Error()}
	}
	if len(n) == 0 {
		return checkResult{"Notifications", "PASS", "disabled"}
	}
	return checkResult{"Notifications", "PASS", fmt.Sprintf("%d webhook(s)", len(n))}
}
