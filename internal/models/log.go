package models

import "time"

// AuditLog records mutating API calls against a ledger.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"size:64;index"`
	Cashier   string `gorm:"size:64;index"`
	Ledger    string `gorm:"size:255;index"`
	Method    string `gorm:"size:16"`
	Path      string `gorm:"size:255"`
	Status    int
	Action    string `gorm:"size:1024"` // 明文动作（未配置密钥时）
	ActionEnc string `gorm:"size:2048"` // 加密后的动作（AES+base64）
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
