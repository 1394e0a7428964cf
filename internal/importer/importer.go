// Package importer replaces the document store with the contents of a
// tracking workbook. A run validates every sheet first and only then wipes
// and repopulates documents and agencies.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/logging"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
)

// DefaultBatchSize is the number of documents inserted per statement.
const DefaultBatchSize = 50

// DefaultYear is the reporting year stamped on imported documents.
const DefaultYear = 2026

// Workbook is a read-only view of a spreadsheet.
type Workbook interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
}

// RawWorkbook is a Workbook that can also return stored cell values,
// ignoring number formats.
type RawWorkbook interface {
	Workbook
	RawRows(sheet string) ([][]string, error)
}

// Store is the persistence an import needs.
type Store interface {
	AgencyStore
	DeleteAllDocuments(ctx context.Context) (int64, error)
	DeleteAllAgencies(ctx context.Context) (int64, error)
	InsertDocuments(ctx context.Context, docs []models.Document) error
}

// State is a phase of an import run.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateAborted    State = "aborted"
	StateDestroying State = "destroying"
	StateIngesting  State = "ingesting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Result is the outcome of one import. Logs is the ordered, human-readable
// account of the run and the only part serialized for callers besides the
// success and error flags.
type Result struct {
	Logs    []string `json:"logs"`
	Success bool     `json:"success,omitempty"`
	Error   bool     `json:"error,omitempty"`

	State     State `json:"-"`
	Sheets    int   `json:"-"`
	Documents int   `json:"-"` // named rows read
	Inserted  int   `json:"-"` // rows that reached the store
	Agencies  int   `json:"-"` // agencies created
}

// Options configures an Importer. Zero values take defaults.
type Options struct {
	Sheets    []config.SheetConfig
	BatchSize int
	Year      int
	Logger    *logrus.Logger
}

// Importer runs imports against one store.
type Importer struct {
	store     Store
	sheets    []config.SheetConfig
	batchSize int
	year      int
	logger    *logrus.Logger
}

// New returns an Importer writing to store.
func New(store Store, opts Options) *Importer {
	im := &Importer{
		store:     store,
		sheets:    opts.Sheets,
		batchSize: opts.BatchSize,
		year:      opts.Year,
		logger:    opts.Logger,
	}
	if len(im.sheets) == 0 {
		im.sheets = config.DefaultSheets()
	}
	if im.batchSize <= 0 {
		im.batchSize = DefaultBatchSize
	}
	if im.year == 0 {
		im.year = DefaultYear
	}
	if im.logger == nil {
		im.logger = logging.Discard()
	}
	return im
}

// FromConfig returns an Importer using the import settings of cfg.
func FromConfig(store Store, cfg *config.Config, logger *logrus.Logger) *Importer {
	return New(store, Options{
		Sheets:    cfg.Import.Sheets,
		BatchSize: cfg.Import.BatchSize,
		Year:      cfg.Year,
		Logger:    logger,
	})
}

// Run imports wb. Validation honours ctx; once existing data starts being
// deleted the run ignores cancellation and goes to completion.
func (im *Importer) Run(ctx context.Context, wb Workbook) Result {
	rl := newRunLog(im.logger)
	res := Result{State: StateValidating}

	rl.infof("📂 Sheets: %s", strings.Join(wb.SheetNames(), ", "))
	rl.infof("🔍 Checking for duplicate STT before import...")
	violations, err := Validate(wb, im.sheets)
	if err != nil {
		return im.fail(res, rl, err)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			rl.errorf("❌ %s", v)
		}
		rl.errorf("⛔ Import aborted: the workbook has duplicate STT values. Fix them and try again; nothing was changed.")
		res.State = StateAborted
		res.Error = true
		res.Logs = rl.lines
		return res
	}
	rl.infof("✅ Data is valid, preparing import...")
	if err := ctx.Err(); err != nil {
		return im.fail(res, rl, fmt.Errorf("importer: %w", err))
	}

	ctx = context.WithoutCancel(ctx)
	res.State = StateDestroying
	rl.infof("🗑️ Deleting existing data...")
	if _, err := im.store.DeleteAllDocuments(ctx); err != nil {
		rl.warnf("⚠️ Delete documents: %v", err)
	}
	if _, err := im.store.DeleteAllAgencies(ctx); err != nil {
		rl.warnf("⚠️ Delete agencies: %v", err)
	}

	res.State = StateIngesting
	agencies := newAgencyResolver(im.store, rl)
	present := sheetSet(wb)
	for _, sc := range im.sheets {
		if !present[sc.Name] {
			rl.warnf("⚠️ Missing sheet: %s", sc.Name)
			continue
		}
		rows, err := readSheet(wb, sc.Name)
		if err != nil {
			res.Agencies = agencies.Created()
			return im.fail(res, rl, fmt.Errorf("importer: read %s: %w", sc.Name, err))
		}
		if len(rows) < minSheetRows {
			rl.warnf("⚠️ Sheet %s is empty", sc.Name)
			continue
		}
		read, inserted := im.ingestSheet(ctx, sc, rows, agencies, rl)
		rl.entry.WithFields(logrus.Fields{"sheet": sc.Name, "rows": read, "inserted": inserted}).Debug("sheet ingested")
		rl.infof("✅ [%s]: %d document groups", sc.Name, read)
		res.Sheets++
		res.Documents += read
		res.Inserted += inserted
	}

	rl.infof("")
	rl.infof("🎉 Done! %d groups, %d agencies.", res.Documents, agencies.Len())
	res.State = StateCompleted
	res.Success = true
	res.Agencies = agencies.Created()
	res.Logs = rl.lines
	return res
}

func (im *Importer) fail(res Result, rl *runLog, err error) Result {
	rl.errorf("❌ Error: %v", err)
	res.State = StateFailed
	res.Success = false
	res.Error = true
	res.Logs = rl.lines
	return res
}

// ingestSheet inserts the named rows of one sheet in batches. Failed batches
// are logged and dropped. It returns the rows read and the rows inserted.
func (im *Importer) ingestSheet(ctx context.Context, sc config.SheetConfig, rows [][]string, agencies *AgencyResolver, rl *runLog) (int, int) {
	cols := ResolveColumns(rows[0], Fields)
	inserted := 0
	batch := make([]models.Document, 0, im.batchSize)

	flush := func(last bool) {
		if len(batch) == 0 {
			return
		}
		if err := im.store.InsertDocuments(ctx, batch); err != nil {
			what := "Insert failed"
			if last {
				what = "Final insert failed"
			}
			rl.warnf("⚠️ %s (%s): %v", what, sc.Name, err)
		} else {
			inserted += len(batch)
		}
		batch = make([]models.Document, 0, im.batchSize)
	}

	read := walkRows(rows, cols, func(row []string, name string, stt int) {
		batch = append(batch, im.buildDocument(ctx, sc, cols, row, name, stt, agencies))
		if len(batch) >= im.batchSize {
			flush(false)
		}
	})
	flush(true)
	return read, inserted
}

// buildDocument assembles the record for one named row. Imported documents
// carry no category and are flagged for review.
func (im *Importer) buildDocument(ctx context.Context, sc config.SheetConfig, cols ColumnMap, row []string, name string, stt int, agencies *AgencyResolver) models.Document {
	base := cols.CountBase()
	legacy := models.LegacyCounts{
		Replaced:     NormalizeCount(cell(row, base)),
		Repealed:     NormalizeCount(cell(row, base+1)),
		NewlyIssued:  NormalizeCount(cell(row, base+2)),
		Undetermined: NormalizeCount(cell(row, base+3)),
	}
	col := cols.Index
	return models.Document{
		DocType:        sc.DocType,
		Status:         sc.Status,
		STT:            stt,
		Name:           name,
		AgencyID:       agencies.Resolve(ctx, text(row, col(FieldAgency))),
		HandlerName:    text(row, col(FieldHandler)),
		NeedsReview:    true,
		ProcessingForm: ProcessingForm(legacy),
		Year:           im.year,
		Legacy:         legacy,
		Workflow: models.Workflow{
			RegDocAgency:   text(row, col(FieldRegAgency)),
			RegDocReply:    text(row, col(FieldRegReply)),
			RegDocUBND:     text(row, col(FieldRegUBND)),
			ApprovalHDND:   text(row, col(FieldApprovalHDND)),
			ExpectedDate:   text(row, col(FieldExpected)),
			FeedbackSent:   text(row, col(FieldFeedbackSent)),
			AppraisalSent:  text(row, col(FieldAppraisal)),
			SubmittedUBND:  text(row, col(FieldSubmittedUBND)),
			SubmittedHDND:  text(row, col(FieldSubmittedHDND)),
			IssuanceNumber: text(row, col(FieldIssuance)),
			ProcessingTime: text(row, col(FieldProcessingTime)),
			Notes:          text(row, col(FieldNotes)),
		},
	}
}

// formLabels are the processing-form labels of the legacy counters, in
// column order.
var formLabels = [4]string{models.FormReplaced, models.FormRepealed, models.FormNewlyIssued, models.FormUndetermined}

// ProcessingForm derives a single label from the legacy counters: the label
// of the only non-zero counter, or of the largest when several are non-zero.
// Ties go to the earlier column. All zero yields "".
func ProcessingForm(c models.LegacyCounts) string {
	counts := [4]int{c.Replaced, c.Repealed, c.NewlyIssued, c.Undetermined}
	best := -1
	for i, n := range counts {
		if n <= 0 {
			continue
		}
		if best < 0 || n > counts[best] {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return formLabels[best]
}

// runLog accumulates the user-facing lines of a run and mirrors them to the
// process logger.
type runLog struct {
	lines []string
	entry *logrus.Entry
}

func newRunLog(logger *logrus.Logger) *runLog {
	return &runLog{lines: []string{}, entry: logger.WithField("component", "importer")}
}

func (l *runLog) add(level logrus.Level, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.lines = append(l.lines, line)
	if line != "" {
		l.entry.Log(level, line)
	}
}

func (l *runLog) infof(format string, args ...any)  { l.add(logrus.InfoLevel, format, args...) }
func (l *runLog) warnf(format string, args ...any)  { l.add(logrus.WarnLevel, format, args...) }
func (l *runLog) errorf(format string, args ...any) { l.add(logrus.ErrorLevel, format, args...) }
