package models

import "time"

// Handler is a staff member who progresses documents through the workflow.
// Documents reference handlers by name only.
type Handler struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
