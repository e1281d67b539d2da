package database

import (
	"fmt"
	"time"

	"cred-entry/internal/models"

	"gorm.io/gorm"
)

// AuditFilter narrows ListAudit. Zero fields are ignored.
type AuditFilter struct {
	Cashier string
	Ledger  string
	Start   time.Time
	End     time.Time // exclusive
	Page    int
	Size    int
}

// RecordAudit stores one audit row.
func RecordAudit(db *gorm.DB, log *models.AuditLog) error {
	if err := db.Create(log).Error; err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// ListAudit returns one page of audit rows, newest first, and the total
// matching count.
func ListAudit(db *gorm.DB, f AuditFilter) ([]models.AuditLog, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 || f.Size > 100 {
		f.Size = 20
	}

	base := db.Model(&models.AuditLog{})
	if f.Cashier != "" {
		base = base.Where("cashier = ?", f.Cashier)
	}
	if f.Ledger != "" {
		base = base.Where("ledger = ?", f.Ledger)
	}
	if !f.Start.IsZero() {
		base = base.Where("created_at >= ?", f.Start)
	}
	if !f.End.IsZero() {
		base = base.Where("created_at < ?", f.End)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit: %w", err)
	}

	var logs []models.AuditLog
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(f.Size).
		Offset((f.Page - 1) * f.Size).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("list audit: %w", err)
	}
	return logs, total, nil
}
