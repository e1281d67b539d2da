package handler

import (
	"net/http"
	"strconv"
	"time"

	"cred-entry/internal/database"
	"cred-entry/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责审计日志查询接口
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{
		DB:         db,
		EncryptKey: encryptKey,
	}
}

type logResp struct {
	ID        uint      `json:"id"`
	SessionID string    `json:"session_id"`
	Cashier   string    `json:"cashier"`
	Ledger    string    `json:"ledger"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs 列出审计日志（分页 + 时间 + 收银员）
func (h *LogHandler) ListLogs(c *gin.Context) {
	// 分页参数
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := database.AuditFilter{
		Cashier: c.Query("cashier"),
		Ledger:  c.Query("ledger"),
		Page:    page,
		Size:    size,
	}

	// 时间筛选：start / end（格式 YYYY-MM-DD）
	if startStr := c.Query("start"); startStr != "" {
		t, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date, want YYYY-MM-DD")
			return
		}
		filter.Start = t
	}
	if endStr := c.Query("end"); endStr != "" {
		t, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date, want YYYY-MM-DD")
			return
		}
		// 结束日期按“当天结束”处理
		filter.End = t.Add(24 * time.Hour)
	}

	logs, total, err := database.ListAudit(h.DB, filter)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load audit logs")
		return
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]

		action := l.Action
		if action == "" && l.ActionEnc != "" {
			action = util.DecryptField(h.EncryptKey, l.ActionEnc)
		}

		items = append(items, logResp{
			ID:        l.ID,
			SessionID: l.SessionID,
			Cashier:   l.Cashier,
			Ledger:    l.Ledger,
			Action:    action,
			Path:      l.Path,
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
