package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"cred-entry/internal/database"
	"cred-entry/internal/models"
	"cred-entry/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerPathKey 由 handler 写入本次请求操作的账本文件
const LedgerPathKey = "ledgerPath"

// RedactedAction 加密失败时代替明文写入 Action
const RedactedAction = "[redacted: encryption failed]"

var encryptField = util.EncryptField

// AuditMiddleware 记录会修改账本的请求（POST / DELETE）。
func AuditMiddleware(db *gorm.DB, encryptKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodDelete {
			c.Next()
			return
		}

		// 读取请求体
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// 执行请求
		c.Next()

		path := c.Request.URL.Path
		action := method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		entry := models.AuditLog{
			Method:    method,
			Path:      path,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Ledger:    c.GetString(LedgerPathKey),
		}
		if s, ok := CurrentSession(c); ok {
			entry.SessionID = s.ID
			entry.Cashier = s.Cashier()
		}

		// 配置了密钥时不存明文
		if encryptKey != "" {
			enc, err := encryptField(encryptKey, action)
			if err != nil {
				logger.Warn("encrypt audit action", zap.String("path", path), zap.Error(err))
				entry.Action = RedactedAction
			} else {
				entry.ActionEnc = enc
			}
		} else {
			entry.Action = action
		}

		if err := database.RecordAudit(db, &entry); err != nil {
			logger.Warn("audit log not saved", zap.String("path", path), zap.Error(err))
		}
	}
}

// ZapLogger 用 zap 输出请求日志，替代 gin.Logger()。
func ZapLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
