package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sotuphap-angiang/vbtrack/internal/logging"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"github.com/sotuphap-angiang/vbtrack/internal/workbook"
)

// ErrImportRunning is returned by Runner.Run while another import holds the
// import lock.
var ErrImportRunning = errors.New("importer: import already running")

// Import triggers recorded on ImportRun.Trigger.
const (
	TriggerUpload   = "upload"
	TriggerCLI      = "cli"
	TriggerSchedule = "schedule"
)

// Source is a workbook to import.
type Source struct {
	Name    string
	Data    []byte
	Trigger string
}

// DefaultStaleAfter is how long a running import row holds the lock before
// it is treated as left behind by a crashed process.
const DefaultStaleAfter = 30 * time.Minute

// Recorder persists the audit row of each run. The row doubles as the
// import lock shared by every process on the same database: BeginImportRun
// reports false while another run holds it.
type Recorder interface {
	BeginImportRun(ctx context.Context, run *models.ImportRun, staleBefore time.Time) (bool, error)
	FinishImportRun(ctx context.Context, run *models.ImportRun) error
}

// Notifier is told about every finished run.
type Notifier interface {
	NotifyImport(ctx context.Context, run models.ImportRun) error
}

// Opener decodes workbook bytes.
type Opener func(data []byte) (Workbook, error)

// Runner serializes imports. The mutex admits one run per Runner; the
// Recorder's lock extends that to every Runner and process sharing the
// database, so a CLI import and a server import cannot overlap.
type Runner struct {
	mu         sync.Mutex
	importer   *Importer
	recorder   Recorder
	notifier   Notifier
	open       Opener
	logger     *logrus.Logger
	now        func() time.Time
	staleAfter time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecorder records an ImportRun row for each run and takes the shared
// import lock through it.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithNotifier sends each finished run to n.
func WithNotifier(n Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithOpener replaces the xlsx decoder.
func WithOpener(open Opener) RunnerOption {
	return func(r *Runner) { r.open = open }
}

// WithStaleAfter overrides DefaultStaleAfter.
func WithStaleAfter(d time.Duration) RunnerOption {
	return func(r *Runner) { r.staleAfter = d }
}

// WithLogger sets the process logger.
func WithLogger(l *logrus.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a Runner driving im.
func NewRunner(im *Importer, opts ...RunnerOption) *Runner {
	r := &Runner{
		importer:   im,
		open:       openXLSX,
		logger:     logging.Discard(),
		now:        time.Now,
		staleAfter: DefaultStaleAfter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func openXLSX(data []byte) (Workbook, error) {
	return workbook.OpenBytes(data)
}

// Run imports src. When another import is in flight it returns immediately
// with an error result and ErrImportRunning; otherwise the error is nil and
// the outcome is in the Result.
func (r *Runner) Run(ctx context.Context, src Source) (Result, error) {
	if !r.mu.TryLock() {
		return rejected(), ErrImportRunning
	}
	defer r.mu.Unlock()

	log := r.logger.WithFields(logrus.Fields{"file": src.Name, "trigger": src.Trigger})
	started := r.now()
	run := models.ImportRun{
		FileName:  src.Name,
		Trigger:   src.Trigger,
		StartedAt: started,
	}
	if r.recorder != nil {
		acquired, err := r.recorder.BeginImportRun(ctx, &run, started.Add(-r.staleAfter))
		if err != nil {
			log.WithError(err).Error("acquire import lock")
			return Result{
				Logs:  []string{fmt.Sprintf("❌ Error: %v", err)},
				Error: true,
				State: StateFailed,
			}, fmt.Errorf("importer: acquire lock: %w", err)
		}
		if !acquired {
			log.Warn("import rejected: another process holds the import lock")
			return rejected(), ErrImportRunning
		}
	}

	m := getMetrics()
	m.inFlight.Set(1)
	defer m.inFlight.Set(0)
	log.Info("import started")

	header := fmt.Sprintf("✅ File: %s (%.1f KB)", src.Name, float64(len(src.Data))/1024)
	var res Result
	wb, err := r.open(src.Data)
	if err != nil {
		res = Result{
			Logs:  []string{header, fmt.Sprintf("❌ Error: %v", err)},
			Error: true,
			State: StateFailed,
		}
	} else {
		res = r.importer.Run(ctx, wb)
		res.Logs = append([]string{header}, res.Logs...)
		if c, ok := wb.(io.Closer); ok {
			c.Close()
		}
	}

	finished := r.now()
	m.observe(res, src.Trigger, finished.Sub(started))
	log.WithFields(logrus.Fields{
		"state":     res.State,
		"documents": res.Inserted,
		"agencies":  res.Agencies,
		"elapsed":   finished.Sub(started).Round(time.Millisecond),
	}).Info("import finished")

	run.State = string(res.State)
	run.Sheets = res.Sheets
	run.Documents = res.Inserted
	run.AgenciesCreated = res.Agencies
	run.Log = strings.Join(res.Logs, "\n")
	run.FinishedAt = &finished

	bg := context.WithoutCancel(ctx)
	if r.recorder != nil {
		if err := r.recorder.FinishImportRun(bg, &run); err != nil {
			log.WithError(err).Warn("record import run")
		}
	}
	if r.notifier != nil {
		if err := r.notifier.NotifyImport(bg, run); err != nil {
			log.WithError(err).Warn("notify import")
		}
	}
	return res, nil
}

func rejected() Result {
	getMetrics().rejected.Inc()
	return Result{
		Logs:  []string{"⛔ Another import is already running. Try again when it finishes."},
		Error: true,
		State: StateIdle,
	}
}

// Busy reports whether this Runner is importing right now. Imports held by
// other processes show up through the Recorder instead.
func (r *Runner) Busy() bool {
	if r.mu.TryLock() {
		r.mu.Unlock()
		return false
	}
	return true
}
