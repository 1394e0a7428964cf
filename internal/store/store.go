// Package store is the gorm-backed persistence layer for documents,
// agencies and import runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm connection. Methods are safe for concurrent use to the
// extent the underlying database is.
type Store struct {
	db *gorm.DB
}

// New returns a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for packages that run their own
// queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// DeleteAllDocuments removes every document and reports how many were deleted.
func (s *Store) DeleteAllDocuments(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Document{})
	if result.Error != nil {
		return 0, fmt.Errorf("store: delete documents: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteAllAgencies removes every agency and reports how many were deleted.
func (s *Store) DeleteAllAgencies(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Agency{})
	if result.Error != nil {
		return 0, fmt.Errorf("store: delete agencies: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// FindAgencyByName looks an agency up by trimmed name, compared byte for
// byte so case and diacritics matter. It returns (nil, nil) when no agency
// has that name.
func (s *Store) FindAgencyByName(ctx context.Context, name string) (*models.Agency, error) {
	var a models.Agency
	cond := "name = ?"
	if s.db.Dialector.Name() == "mysql" {
		cond = "name = BINARY ?"
	}
	err := s.db.WithContext(ctx).Where(cond, strings.TrimSpace(name)).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find agency %q: %w", name, err)
	}
	return &a, nil
}

// CreateAgency inserts an agency with the trimmed name.
func (s *Store) CreateAgency(ctx context.Context, name string) (*models.Agency, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("store: create agency: name is required")
	}
	a := models.Agency{Name: name}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("store: create agency %q: %w", name, err)
	}
	return &a, nil
}

// InsertDocuments inserts docs in a single statement.
func (s *Store) InsertDocuments(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Omit("Agency").Create(&docs).Error; err != nil {
		return fmt.Errorf("store: insert %d documents: %w", len(docs), err)
	}
	return nil
}

// DocumentFilter narrows ListDocuments. Empty fields match everything.
type DocumentFilter struct {
	DocType string
	Status  string
	Year    int
}

// ListDocuments returns documents with their agency preloaded, ordered by
// partition and STT.
func (s *Store) ListDocuments(ctx context.Context, f DocumentFilter) ([]models.Document, error) {
	q := s.db.WithContext(ctx).Preload("Agency")
	if f.DocType != "" {
		q = q.Where("doc_type = ?", f.DocType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Year != 0 {
		q = q.Where("year = ?", f.Year)
	}
	var docs []models.Document
	if err := q.Order("doc_type, status, stt").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	return docs, nil
}

// ListAgencies returns every agency ordered by name.
func (s *Store) ListAgencies(ctx context.Context) ([]models.Agency, error) {
	var agencies []models.Agency
	if err := s.db.WithContext(ctx).Order("name").Find(&agencies).Error; err != nil {
		return nil, fmt.Errorf("store: list agencies: %w", err)
	}
	return agencies, nil
}

// BeginImportRun takes the import lock by inserting run in the running
// state. Running rows started before staleBefore belong to a crashed process
// and are marked abandoned first. It reports false, inserting nothing, when
// another run still holds the lock.
func (s *Store) BeginImportRun(ctx context.Context, run *models.ImportRun, staleBefore time.Time) (bool, error) {
	acquired := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ImportRun{}).
			Where("state = ? AND started_at < ?", models.ImportRunRunning, staleBefore).
			Updates(map[string]interface{}{
				"state":       models.ImportRunAbandoned,
				"finished_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("expire stale runs: %w", err)
		}

		q := tx.Select("id").Where("state = ?", models.ImportRunRunning)
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var holders []models.ImportRun
		if err := q.Limit(1).Find(&holders).Error; err != nil {
			return fmt.Errorf("check running imports: %w", err)
		}
		if len(holders) > 0 {
			return nil
		}

		run.ID = 0
		run.State = models.ImportRunRunning
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		acquired = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store: begin import run: %w", err)
	}
	return acquired, nil
}

// FinishImportRun stores the final state of a run started by
// BeginImportRun, releasing the import lock.
func (s *Store) FinishImportRun(ctx context.Context, run *models.ImportRun) error {
	if run.ID == 0 {
		return errors.New("store: finish import run: run was never begun")
	}
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("store: finish import run: %w", err)
	}
	return nil
}

// ImportRunning reports whether any process holds the import lock.
func (s *Store) ImportRunning(ctx context.Context) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ImportRun{}).
		Where("state = ?", models.ImportRunRunning).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("store: import running: %w", err)
	}
	return n > 0, nil
}

// ListImportRuns returns the most recent import runs, newest first. A limit
// of 0 or less returns all of them.
func (s *Store) ListImportRuns(ctx context.Context, limit int) ([]models.ImportRun, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []models.ImportRun
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("store: list import runs: %w", err)
	}
	return runs, nil
}
