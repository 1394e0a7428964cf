package dashboard

import (
	"context"
	"fmt"

	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"github.com/sotuphap-angiang/vbtrack/internal/report"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"gorm.io/gorm"
)

// Report fetches the documents selected by f and computes the dashboard aggregates.
func Report(ctx context.Context, st *store.Store, cfg config.ReportConfig, f store.DocumentFilter) (report.Dashboard, error) {
	docs, err := st.ListDocuments(ctx, f)
	if err != nil {
		return report.Dashboard{}, fmt.Errorf("dashboard: report: %w", err)
	}
	return report.Build(docs, cfg), nil
}

// ImportEvent is the stream payload for a finished import. The full log is
// left out; clients fetch /api/imports for it.
type ImportEvent struct {
	ID        uint   `json:"id"`
	FileName  string `json:"file_name"`
	Trigger   string `json:"trigger"`
	State     string `json:"state"`
	Documents int    `json:"documents"`
	Agencies  int    `json:"agencies_created"`
}

func importEvent(run models.ImportRun) ImportEvent {
	return ImportEvent{
		ID:        run.ID,
		FileName:  run.FileName,
		Trigger:   run.Trigger,
		State:     run.State,
		Documents: run.Documents,
		Agencies:  run.AgenciesCreated,
	}
}

// lastImportID returns the newest finished import run ID, or 0 when there
// is none.
func lastImportID(db *gorm.DB) (uint, error) {
	var id uint
	err := db.Model(&models.ImportRun{}).
		Where("state <> ?", models.ImportRunRunning).
		Select("COALESCE(MAX(id), 0)").Scan(&id).Error
	return id, err
}

// importsSince returns finished runs with an ID above after, oldest first.
// A run still holding the lock is reported once it finishes.
func importsSince(db *gorm.DB, after uint) ([]models.ImportRun, error) {
	var runs []models.ImportRun
	err := db.Omit("log").
		Where("id > ? AND state <> ?", after, models.ImportRunRunning).
		Order("id ASC").Find(&runs).Error
	return runs, err
}

// importing reports whether this server or any other process is importing.
func (s *server) importing(ctx context.Context) bool {
	if s.runner.Busy() {
		return true
	}
	running, err := s.store.ImportRunning(ctx)
	if err != nil {
		s.log.WithError(err).Warn("check running imports")
		return false
	}
	return running
}
