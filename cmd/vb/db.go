package main

import (
	"fmt"

	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the vbtrack database",
		Long:  "Creates the database (MySQL) or file (SQLite), migrates all tables and seeds handlers from config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd)
		},
	}
}

func runDBInit(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded config from %s (driver %s)\n", cmd.Flag("config").Value.String(), cfg.Database.Driver)

	if cfg.Database.Driver == "mysql" && cfg.Database.DSN == "" {
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.CreateDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Database %s ready\n", cfg.Database.Name)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := seedHandlers(cmd, gormDB, cfg); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nvbtrack database initialized successfully.")
	return nil
}

func seedHandlers(cmd *cobra.Command, gormDB *gorm.DB, cfg *config.Config) error {
	n, err := db.SeedHandlers(gormDB, cfg.Handlers)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d new handlers (%d in config)\n", n, len(cfg.Handlers))
	return nil
}

func newDBResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the vbtrack database",
		Long: `Drops every vbtrack table (or the whole MySQL database), migrates again
and re-seeds handlers from config. All documents, agencies, handlers and
import history are lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !skipConfirm {
		if !confirm(cmd, fmt.Sprintf("This will permanently delete all vbtrack data (%s).", cfg.Database.Driver)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	var gormDB *gorm.DB
	if cfg.Database.Driver == "mysql" && cfg.Database.DSN == "" {
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.DropDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Dropped database %s\n", cfg.Database.Name)
		if err := db.CreateDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		if gormDB, err = db.Connect(cfg.Database); err != nil {
			return err
		}
		if err := db.AutoMigrate(gormDB); err != nil {
			return err
		}
	} else {
		if gormDB, err = db.Connect(cfg.Database); err != nil {
			return err
		}
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if err := seedHandlers(cmd, gormDB, cfg); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nvbtrack database reset and re-initialized successfully.")
	return nil
}
