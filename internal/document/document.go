// Package document provides manual document maintenance: creation with
// automatic numbering, edits, bulk deletion with renumbering, and filtered
// listing.
package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"gorm.io/gorm"
)

// DefaultPageSize is the page size used when a query does not set one.
const DefaultPageSize = 50

// DefaultYear is stamped on created documents that carry no year.
const DefaultYear = 2026

var (
	// ErrNotFound is returned when a document ID does not exist.
	ErrNotFound = errors.New("document: not found")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("document: invalid input")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Fields holds the editable content of a document.
type Fields struct {
	Name           string                     `json:"name" validate:"required,max=4000"`
	AgencyID       *uint                      `json:"agency_id"`
	HandlerName    string                     `json:"handler_name" validate:"max=128"`
	DocCategory    string                     `json:"doc_category" validate:"omitempty,oneof=van_ban_tiep_tuc van_ban_moi"`
	ProcessingForm string                     `json:"processing_form" validate:"max=32"`
	Legacy         models.LegacyCounts        `json:"legacy"`
	Continuing     models.ContinuingCounts    `json:"continuing"`
	NewInstrument  models.NewInstrumentCounts `json:"new_instrument"`
	Workflow       models.Workflow            `json:"workflow"`
}

// CreateInput is a new document. STT is assigned on creation.
type CreateInput struct {
	DocType string `json:"doc_type" validate:"required,oneof=NQ QD_UBND QD_CT_UBND"`
	Status  string `json:"status" validate:"required,oneof=can_xu_ly da_xu_ly"`
	Year    int    `json:"year" validate:"omitempty,gte=1990,lte=2100"`
	Fields
}

func (f *Fields) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.HandlerName = strings.TrimSpace(f.HandlerName)
	f.ProcessingForm = strings.TrimSpace(f.ProcessingForm)
	if f.AgencyID != nil && *f.AgencyID == 0 {
		f.AgencyID = nil
	}
}

func (f Fields) apply(d *models.Document) {
	d.Name = f.Name
	d.AgencyID = f.AgencyID
	d.HandlerName = f.HandlerName
	d.DocCategory = f.DocCategory
	d.ProcessingForm = f.ProcessingForm
	d.Legacy = f.Legacy
	d.Continuing = f.Continuing
	d.NewInstrument = f.NewInstrument
	d.Workflow = f.Workflow
	d.ZeroInactiveCategory()
}

func check(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Create inserts a document at the end of its (doc type, status) partition,
// numbered one past the current maximum STT.
func Create(db *gorm.DB, in CreateInput) (*models.Document, error) {
	in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Year == 0 {
		in.Year = DefaultYear
	}

	doc := models.Document{DocType: in.DocType, Status: in.Status, Year: in.Year}
	in.Fields.apply(&doc)

	err := db.Transaction(func(tx *gorm.DB) error {
		next, err := NextSTT(tx, in.DocType, in.Status)
		if err != nil {
			return err
		}
		doc.STT = next
		return tx.Omit("Agency").Create(&doc).Error
	})
	if err != nil {
		return nil, fmt.Errorf("document: create: %w", err)
	}
	return &doc, nil
}

// NextSTT returns one past the highest STT in the partition, or 1 when it is empty.
func NextSTT(db *gorm.DB, docType, status string) (int, error) {
	var max int
	err := db.Model(&models.Document{}).
		Where("doc_type = ? AND status = ?", docType, status).
		Select("COALESCE(MAX(stt), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("document: max stt: %w", err)
	}
	return max + 1, nil
}

// Get retrieves a document by ID with its agency preloaded.
func Get(db *gorm.DB, id string) (*models.Document, error) {
	var doc models.Document
	if err := db.Preload("Agency").Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("document: get %s: %w", id, err)
	}
	return &doc, nil
}

// Update replaces the editable fields of a document. A successful save
// clears NeedsReview and zeroes the counters of the inactive category.
// Doc type, status and STT are never changed here.
func Update(db *gorm.DB, id string, in Fields) (*models.Document, error) {
	in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}

	var doc models.Document
	if err := db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("document: get %s for update: %w", id, err)
	}

	in.apply(&doc)
	doc.NeedsReview = false
	if err := db.Omit("Agency").Save(&doc).Error; err != nil {
		return nil, fmt.Errorf("document: update %s: %w", id, err)
	}
	return Get(db, id)
}

// Delete removes the given documents of the (doc type, status) partition
// and renumbers what remains of it to 1..N, keeping the previous order. IDs
// belonging to another partition are left alone. It returns the number of
// rows deleted.
func Delete(db *gorm.DB, ids []string, docType, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no document IDs given", ErrInvalid)
	}
	if !models.IsValidDocType(docType) || !models.IsValidStatus(status) {
		return 0, fmt.Errorf("%w: unknown partition %s/%s", ErrInvalid, docType, status)
	}

	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ? AND doc_type = ? AND status = ?", ids, docType, status).
			Delete(&models.Document{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return renumber(tx, docType, status)
	})
	if err != nil {
		return 0, fmt.Errorf("document: delete: %w", err)
	}
	return deleted, nil
}

func renumber(tx *gorm.DB, docType, status string) error {
	var remaining []models.Document
	err := tx.Select("id", "stt").
		Where("doc_type = ? AND status = ?", docType, status).
		Order("stt ASC, created_at ASC, id ASC").
		Find(&remaining).Error
	if err != nil {
		return err
	}
	for i, d := range remaining {
		if d.STT == i+1 {
			continue
		}
		if err := tx.Model(&models.Document{}).Where("id = ?", d.ID).Update("stt", i+1).Error; err != nil {
			return err
		}
	}
	return nil
}

// Sort fields accepted by List.
var sortColumns = map[string]string{
	"stt":           "stt",
	"name":          "name",
	"handler_name":  "handler_name",
	"updated_at":    "updated_at",
	"expected_date": "expected_date",
}

// SortFields lists the accepted Query.Sort values.
func SortFields() []string {
	out := make([]string, 0, len(sortColumns))
	for k := range sortColumns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Query selects a page of documents. Empty fields do not filter.
type Query struct {
	DocType  string `form:"doc_type"`
	Status   string `form:"status"`
	Search   string `form:"q"`
	Handler  string `form:"handler"`
	AgencyID uint   `form:"agency_id"`
	Sort     string `form:"sort"`
	Desc     bool   `form:"desc"`
	Page     int    `form:"page"` // 0-based
	PageSize int    `form:"page_size"`
}

// Page is one page of a List result.
type Page struct {
	Documents []models.Document `json:"documents"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
}

// List returns the page of documents selected by q. Search matches the name
// fuzzily, ignoring case and diacritics.
func List(db *gorm.DB, q Query) (*Page, error) {
	column := "stt"
	if q.Sort != "" {
		c, ok := sortColumns[q.Sort]
		if !ok {
			return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalid, q.Sort)
		}
		column = c
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 0 {
		q.Page = 0
	}

	tx := db.Model(&models.Document{}).Preload("Agency")
	if q.DocType != "" {
		tx = tx.Where("doc_type = ?", q.DocType)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Handler != "" {
		tx = tx.Where("handler_name = ?", q.Handler)
	}
	if q.AgencyID != 0 {
		tx = tx.Where("agency_id = ?", q.AgencyID)
	}
	tx = tx.Order(fmt.Sprintf("%s %s", column, dir))
	if column != "stt" {
		tx = tx.Order("stt ASC")
	}

	var docs []models.Document
	if err := tx.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("document: list: %w", err)
	}

	if search := strings.TrimSpace(q.Search); search != "" {
		matched := docs[:0]
		for _, d := range docs {
			if fuzzy.MatchNormalizedFold(search, d.Name) {
				matched = append(matched, d)
			}
		}
		docs = matched
	}

	page := &Page{Total: len(docs), Page: q.Page, PageSize: q.PageSize}
	start := q.Page * q.PageSize
	if start > len(docs) {
		start = len(docs)
	}
	end := start + q.PageSize
	if end > len(docs) {
		end = len(docs)
	}
	page.Documents = append([]models.Document{}, docs[start:end]...)
	return page, nil
}
