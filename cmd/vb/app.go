package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/db"
	"github.com/sotuphap-angiang/vbtrack/internal/importer"
	"github.com/sotuphap-angiang/vbtrack/internal/logging"
	"github.com/sotuphap-angiang/vbtrack/internal/notify"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

// app bundles what most commands need: config, logger and database.
type app struct {
	cfg *config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cmd.Flag("config").Value.String()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openApp loads the config and connects to the configured database.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg: cfg,
		log: logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr()),
		db:  gormDB,
	}, nil
}

// runner builds the import runner with audit recording and any configured
// chat notifications.
func (a *app) runner() (*importer.Runner, error) {
	st := store.New(a.db)
	opts := []importer.RunnerOption{importer.WithRecorder(st), importer.WithLogger(a.log)}
	notifiers, err := notify.FromConfig(a.cfg.Notify)
	if err != nil {
		return nil, err
	}
	if len(notifiers) > 0 {
		opts = append(opts, importer.WithNotifier(notifiers))
	}
	return importer.NewRunner(importer.FromConfig(st, a.cfg, a.log), opts...), nil
}

// confirm asks the user to type "yes". Non-interactive stdin is refused so
// scripts must pass --yes explicitly.
func confirm(cmd *cobra.Command, warning string) bool {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(out, "stdin is not a terminal; pass --yes to confirm.")
		return false
	}

	fmt.Fprintf(out, "WARNING: %s\n", warning)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
