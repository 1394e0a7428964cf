// Package handler manages the roster of staff members documents are assigned to.
package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a handler does not exist.
	ErrNotFound = errors.New("handler: not found")
	// ErrDuplicateName is returned when another handler already has the name.
	ErrDuplicateName = errors.New("handler: name already exists")
	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("handler: invalid input")
)

var validate = validator.New()

// Input is the editable content of a handler.
type Input struct {
	Name   string `json:"name" validate:"required,max=128"`
	Active *bool  `json:"active"`
}

func (in *Input) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: name is required (max 128 characters)", ErrInvalid)
	}
	return nil
}

// List returns handlers ordered by ID. With activeOnly, inactive handlers are skipped.
func List(db *gorm.DB, activeOnly bool) ([]models.Handler, error) {
	q := db.Model(&models.Handler{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var out []models.Handler
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("handler: list: %w", err)
	}
	return out, nil
}

// Get retrieves a handler by ID.
func Get(db *gorm.DB, id uint) (*models.Handler, error) {
	var h models.Handler
	if err := db.First(&h, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("handler: get %d: %w", id, err)
	}
	return &h, nil
}

// GetByName retrieves a handler by its trimmed name.
func GetByName(db *gorm.DB, name string) (*models.Handler, error) {
	name = strings.TrimSpace(name)
	var h models.Handler
	if err := db.Where("name = ?", name).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("handler: get %s: %w", name, err)
	}
	return &h, nil
}

// Create adds an active handler.
func Create(db *gorm.DB, name string) (*models.Handler, error) {
	in := Input{Name: name}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := ensureUnique(db, in.Name, 0); err != nil {
		return nil, err
	}
	h := models.Handler{Name: in.Name, Active: true}
	if err := db.Create(&h).Error; err != nil {
		return nil, fmt.Errorf("handler: create %s: %w", in.Name, err)
	}
	return &h, nil
}

// Update renames a handler and, when in.Active is set, changes its active flag.
func Update(db *gorm.DB, id uint, in Input) (*models.Handler, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	h, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if err := ensureUnique(db, in.Name, id); err != nil {
		return nil, err
	}

	h.Name = in.Name
	if in.Active != nil {
		h.Active = *in.Active
	}
	// Select forces the zero value of Active to be written.
	if err := db.Model(h).Select("name", "active").Updates(h).Error; err != nil {
		return nil, fmt.Errorf("handler: update %d: %w", id, err)
	}
	return h, nil
}

// Delete removes a handler. Documents keep the name they were assigned.
func Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Handler{}, id)
	if res.Error != nil {
		return fmt.Errorf("handler: delete %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func ensureUnique(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := db.Model(&models.Handler{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("handler: check name %s: %w", name, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	return nil
}
