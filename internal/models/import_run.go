package models

import "time"

// Lock states of an ImportRun. Finished runs carry the importer's final
// state instead.
const (
	ImportRunRunning   = "running"
	ImportRunAbandoned = "abandoned"
)

// ImportRun records the outcome of one workbook import.
type ImportRun struct {
	ID              uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName        string     `gorm:"size:255" json:"file_name"`
	Trigger         string     `gorm:"size:16" json:"trigger"`     // upload, cli, schedule
	State           string     `gorm:"size:16;index" json:"state"` // running while the import holds the lock
	Sheets          int        `json:"sheets"`
	Documents       int        `json:"documents"`
	AgenciesCreated int        `json:"agencies_created"`
	Log             string     `gorm:"type:mediumtext" json:"log,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
}
