package db

import (
	"fmt"
	"strings"

	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns every GORM model, parents before children.
func AllModels() []interface{} {
	return []interface{}{
		&models.Agency{},
		&models.Document{},
		&models.Handler{},
		&models.ImportRun{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	if db.Dialector.Name() == "mysql" {
		// Agency names differ by case and diacritics ("Sở" vs "SỞ"), which
		// the default utf8mb4 collations fold together.
		err := db.Exec("ALTER TABLE agencies MODIFY name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL").Error
		if err != nil {
			return fmt.Errorf("db: agency name collation: %w", err)
		}
	}
	return nil
}

// Reset drops every table and migrates again. All data is lost.
func Reset(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop table for %T: %w", all[i], err)
		}
	}
	return AutoMigrate(db)
}

// SeedHandlers inserts handlers from configuration. Existing names are left
// untouched so deactivated handlers stay deactivated.
func SeedHandlers(db *gorm.DB, names []string) (int, error) {
	created := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		h := models.Handler{Name: name, Active: true}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&h)
		if result.Error != nil {
			return created, fmt.Errorf("db: seed handler %q: %w", name, result.Error)
		}
		created += int(result.RowsAffected)
	}
	return created, nil
}
