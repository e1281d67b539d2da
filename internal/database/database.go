package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cred-entry/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pragmas applied to every audit connection pool
var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA busy_timeout = 5000;",
}

// Init opens the audit database. Audit rows are small and written once per
// mutating request, so a handful of connections is plenty.
func Init(cfg config.AuditConfig) (*gorm.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	level := logger.Silent
	if cfg.LogMode {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("audit sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	for _, p := range pragmas {
		_, _ = sqlDB.Exec(p)
	}
	return db, nil
}
