package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cred-entry/internal/config"
	"cred-entry/internal/database"
	"cred-entry/internal/models"
	"cred-entry/internal/util"
)

func auditEngine(t *testing.T, key string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db, err := database.Init(config.AuditConfig{Path: filepath.Join(t.TempDir(), "audit.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r := gin.New()
	r.Use(AuditMiddleware(db, key, zap.NewNop()))
	r.POST("/api/entries", func(c *gin.Context) {
		c.Set(LedgerPathKey, "aggregate_2025-06-15.xlsx")
		c.Status(http.StatusCreated)
	})
	return r, db
}

func postEntry(t *testing.T, r *gin.Engine) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(`{"credit":"150.00"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
}

func onlyAuditRow(t *testing.T, db *gorm.DB) models.AuditLog {
	t.Helper()
	rows, total, err := database.ListAudit(db, database.AuditFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	return rows[0]
}

func TestAuditStoresPlainAction(t *testing.T) {
	r, db := auditEngine(t, "")
	postEntry(t, r)

	row := onlyAuditRow(t, db)
	assert.Equal(t, `POST /api/entries {"credit":"150.00"}`, row.Action)
	assert.Empty(t, row.ActionEnc)
	assert.Equal(t, "aggregate_2025-06-15.xlsx", row.Ledger)
	assert.Equal(t, http.StatusCreated, row.Status)
}

func TestAuditEncryptsAction(t *testing.T) {
	r, db := auditEngine(t, "audit-key")
	postEntry(t, r)

	row := onlyAuditRow(t, db)
	assert.Empty(t, row.Action)
	require.NotEmpty(t, row.ActionEnc)
	assert.Equal(t, `POST /api/entries {"credit":"150.00"}`, util.DecryptField("audit-key", row.ActionEnc))
}

func TestAuditRedactsActionWhenEncryptionFails(t *testing.T) {
	encryptField = func(string, string) (string, error) { return "", errors.New("no entropy") }
	t.Cleanup(func() { encryptField = util.EncryptField })

	r, db := auditEngine(t, "audit-key")
	postEntry(t, r)

	row := onlyAuditRow(t, db)
	assert.Equal(t, RedactedAction, row.Action)
	assert.Empty(t, row.ActionEnc)
	assert.NotContains(t, row.Action, "150.00")
}
