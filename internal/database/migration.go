package database

import (
	"fmt"

	"cred-entry/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the audit tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
