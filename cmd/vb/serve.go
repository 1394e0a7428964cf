package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sotuphap-angiang/vbtrack/internal/dashboard"
	"github.com/sotuphap-angiang/vbtrack/internal/scheduler"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API and the scheduled import",
		Long: `Serves the JSON API, the import event stream and Prometheus metrics.
When import.schedule is set, the configured workbook is also re-imported
on that schedule. Stops cleanly on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	runner, err := a.runner()
	if err != nil {
		return err
	}
	if port <= 0 {
		port = a.cfg.Server.Port
	}

	var sched *scheduler.Scheduler
	if a.cfg.Import.Schedule != "" {
		if sched, err = scheduler.New(a.cfg.Import, runner, a.log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dashboard.Start(ctx, dashboard.StartOpts{
			DB:     a.db,
			Runner: runner,
			Config: a.cfg,
			Logger: a.log,
			Port:   port,
			Out:    cmd.OutOrStdout(),
		})
	})
	if sched != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Scheduled import of %s (%s)\n", a.cfg.Import.WorkbookPath, a.cfg.Import.Schedule)
		g.Go(func() error { return sched.Run(ctx) })
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
