package router

import (
	"net/http"

	"cred-entry/internal/config"
	"cred-entry/internal/handler"
	"cred-entry/internal/ledger"
	"cred-entry/internal/middleware"
	"cred-entry/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the services the API is built on.
type Deps struct {
	DB       *gorm.DB
	Store    *ledger.Store
	Sessions *session.Manager
	Logger   *zap.Logger
}

// SetupRouter configures the Gin engine and the JSON API.
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.ZapLogger(d.Logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")

	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Store)
	api.GET("/options", handler.Options)
	api.POST("/sessions", sessionHandler.StartSession)

	// 需要会话才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.SessionMiddleware(d.Sessions),
		middleware.AuditMiddleware(d.DB, cfg.Audit.EncryptionKey, d.Logger),
	)

	protected.GET("/sessions/current", sessionHandler.GetSession)
	protected.POST("/sessions/current/cashier", sessionHandler.SelectCashier)
	protected.DELETE("/sessions/current/cashier", sessionHandler.ChangeCashier)
	protected.POST("/sessions/current/bank", sessionHandler.SelectBank)
	protected.DELETE("/sessions/current", sessionHandler.EndSession)

	entryHandler := handler.NewEntryHandler(d.Store, d.Logger)
	protected.POST("/entries", entryHandler.CreateEntry)
	protected.GET("/entries", entryHandler.ListEntries)
	protected.DELETE("/entries/:id", entryHandler.DeleteEntry)

	importExportHandler := handler.NewImportExportHandler(d.Store, d.Logger)
	protected.GET("/export/csv", importExportHandler.ExportCSV)
	protected.GET("/export/xlsx", importExportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(d.DB, cfg.Audit.EncryptionKey)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
