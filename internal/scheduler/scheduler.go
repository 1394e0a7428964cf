// Package scheduler re-imports a workbook from disk on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/importer"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ImportRunner is the subset of importer.Runner the scheduler drives.
type ImportRunner interface {
	Run(ctx context.Context, src importer.Source) (importer.Result, error)
}

// Scheduler fires imports of one workbook path.
type Scheduler struct {
	schedule cron.Schedule
	expr     string
	path     string
	runner   ImportRunner
	log      *logrus.Entry
	readFile func(string) ([]byte, error)
}

// New parses cfg.Schedule and returns a scheduler for cfg.WorkbookPath.
func New(cfg config.ImportConfig, runner ImportRunner, logger *logrus.Logger) (*Scheduler, error) {
	if cfg.Schedule == "" {
		return nil, errors.New("scheduler: no schedule configured")
	}
	if cfg.WorkbookPath == "" {
		return nil, errors.New("scheduler: no workbook path configured")
	}
	sched, err := cronParser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse %q: %w", cfg.Schedule, err)
	}
	return &Scheduler{
		schedule: sched,
		expr:     cfg.Schedule,
		path:     cfg.WorkbookPath,
		runner:   runner,
		log:      logger.WithField("component", "scheduler"),
		readFile: os.ReadFile,
	}, nil
}

// Next returns the first fire time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run fires imports on the schedule until ctx is cancelled. An import in
// progress when ctx ends is waited for.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithParser(cronParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.Fire(ctx) }))
	c.Start()
	s.log.WithFields(logrus.Fields{"schedule": s.expr, "path": s.path, "next": s.Next(time.Now())}).Info("scheduled import enabled")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// Fire reads the workbook and runs one import. Failures are logged; the
// runner records the outcome.
func (s *Scheduler) Fire(ctx context.Context) importer.Result {
	log := s.log.WithField("path", s.path)
	data, err := s.readFile(s.path)
	if err != nil {
		log.WithError(err).Error("read workbook")
		return importer.Result{
			Logs:  []string{fmt.Sprintf("❌ Error: %v", err)},
			Error: true,
			State: importer.StateFailed,
		}
	}

	res, err := s.runner.Run(ctx, importer.Source{
		Name:    filepath.Base(s.path),
		Data:    data,
		Trigger: importer.TriggerSchedule,
	})
	switch {
	case errors.Is(err, importer.ErrImportRunning):
		log.Warn("skipped: another import is running")
	case err != nil:
		log.WithError(err).Error("scheduled import")
	default:
		log.WithField("state", res.State).Info("scheduled import finished")
	}
	return res
}
