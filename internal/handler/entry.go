package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cred-entry/internal/ledger"
	"cred-entry/internal/middleware"
	"cred-entry/internal/models"
	"cred-entry/internal/session"
	"cred-entry/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EntryHandler 负责账目相关接口
type EntryHandler struct {
	Store  *ledger.Store
	Logger *zap.Logger
}

func NewEntryHandler(store *ledger.Store, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{
		Store:  store,
		Logger: logger,
	}
}

// ---------- 请求结构 ----------

type createEntryReq struct {
	Credit string `json:"credit" binding:"required"`
	Bank   string `json:"bank"`
}

// activeSession 记账和删除需要已选择收银员
func activeSession(c *gin.Context) (*session.Session, bool) {
	s, ok := currentSession(c)
	if !ok {
		return nil, false
	}
	if s.State() != session.Active {
		util.Error(c, http.StatusConflict, util.CodeConflict, "select a cashier first")
		return nil, false
	}
	return s, true
}

// ---------- 记一笔 ----------

func (h *EntryHandler) CreateEntry(c *gin.Context) {
	s, ok := activeSession(c)
	if !ok {
		return
	}

	var req createEntryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "please enter a credit amount")
		return
	}

	// 请求里带了银行就顺便更新会话里的选择
	if req.Bank != "" {
		if err := s.SelectBank(req.Bank); err != nil {
			sessionError(c, err)
			return
		}
	}
	bank := s.SelectedBank()
	if bank == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "please select a bank")
		return
	}

	// 金额校验：>0，最多两位小数
	credit, err := decimal.NewFromString(strings.TrimSpace(req.Credit))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "please enter a valid credit amount")
		return
	}
	if err := util.ValidateCredit(credit); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	entry := models.Entry{
		Timestamp: time.Now().Format(models.TimestampLayout),
		Cashier:   s.Cashier(),
		Bank:      bank,
		Credit:    credit,
	}

	saved, err := h.Store.Append(c.Request.Context(), s, entry)
	c.Set(middleware.LedgerPathKey, h.Store.Path(s))
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidEntry) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		h.Logger.Error("save entry", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to save entry: "+err.Error())
		return
	}

	util.Created(c, util.Response{
		"entry":   saved,
		"message": fmt.Sprintf("Saved: ID %d | %s - %s", saved.ID, saved.Bank, saved.Credit.StringFixed(2)),
	})
}

// ListEntries 查询当前账本，支持关键字搜索，按 ID 倒序
func (h *EntryHandler) ListEntries(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	table, err := h.Store.LoadAll(c.Request.Context(), s)
	var warning string
	if err != nil {
		if !errors.Is(err, ledger.ErrLedgerUnreadable) {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load entries")
			return
		}
		// 文件损坏时不报错，返回空结果并提示
		h.Logger.Warn("ledger unreadable", zap.Error(err))
		warning = err.Error()
	}

	q := c.Query("q")
	filtered := ledger.Search(table.Records, q)
	items := ledger.SortByIDDesc(filtered)

	resp := util.Response{
		"header":  table.Header,
		"items":   items,
		"total":   len(items),
		"summary": ledger.Summarize(items),
		"ledger":  h.Store.Path(s),
	}
	if warning != "" {
		resp["warning"] = warning
	}
	util.Success(c, resp)
}

// ---------- 删除一条记录 ----------

func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	s, ok := activeSession(c)
	if !ok {
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid entry ID")
		return
	}

	msg, err := h.Store.Delete(c.Request.Context(), s, id)
	c.Set(middleware.LedgerPathKey, h.Store.Path(s))
	switch {
	case errors.Is(err, ledger.ErrLedgerNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "File not found.")
		return
	case errors.Is(err, ledger.ErrEntryNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, fmt.Sprintf("Could not find entry ID %d in the file.", id))
		return
	case err != nil:
		h.Logger.Error("delete entry", zap.Int64("id", id), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete entry")
		return
	}

	util.Success(c, util.Response{
		"message": msg,
	})
}
