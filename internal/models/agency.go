package models

import "time"

// Agency is a drafting body. Its trimmed name is the natural key.
type Agency struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	ShortName *string   `gorm:"size:64" json:"short_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
