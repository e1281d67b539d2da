package handler

import (
	"errors"
	"net/http"

	"cred-entry/internal/ledger"
	"cred-entry/internal/middleware"
	"cred-entry/internal/models"
	"cred-entry/internal/session"
	"cred-entry/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionHandler 负责收银会话：开始、选择收银员/银行、结束
type SessionHandler struct {
	Sessions *session.Manager
	Store    *ledger.Store
}

func NewSessionHandler(mgr *session.Manager, store *ledger.Store) *SessionHandler {
	return &SessionHandler{
		Sessions: mgr,
		Store:    store,
	}
}

type selectCashierReq struct {
	Cashier string `json:"cashier" binding:"required"`
}

type selectBankReq struct {
	Bank string `json:"bank" binding:"required"`
}

// currentSession 取当前会话，取不到时直接写错误响应
func currentSession(c *gin.Context) (*session.Session, bool) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeNoSession, "no session, start one first")
		return nil, false
	}
	return s, true
}

// sessionError 把会话错误映射为 HTTP 响应
func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownCashier), errors.Is(err, session.ErrUnknownBank):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, session.ErrInvalidTransition):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case errors.Is(err, session.ErrSessionNotFound):
		util.Error(c, http.StatusUnauthorized, util.CodeNoSession, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, err.Error())
	}
}

func (h *SessionHandler) sessionResp(s *session.Session) gin.H {
	resp := gin.H{"session": s.Snapshot()}
	if p, ok := h.Sessions.Locator.Current(); ok {
		resp["ledger"] = p.AggregateFile
		resp["first_entry_date"] = p.FirstEntryDate
	}
	return resp
}

// StartSession 开始一个新会话，等待选择收银员
func (h *SessionHandler) StartSession(c *gin.Context) {
	s := h.Sessions.Start()
	c.SetCookie(middleware.SessionCookie, s.ID, 0, "/", "", false, true)
	util.Created(c, util.Response(h.sessionResp(s)))
}

// GetSession 返回当前会话状态和账本文件
func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	util.Success(c, util.Response(h.sessionResp(s)))
}

// SelectCashier 选择收银员，进入记账状态
func (h *SessionHandler) SelectCashier(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req selectCashierReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "please select a cashier")
		return
	}
	if err := s.SelectCashier(req.Cashier); err != nil {
		sessionError(c, err)
		return
	}
	util.Success(c, util.Response(h.sessionResp(s)))
}

// ChangeCashier 回到收银员选择，同时清除已选银行
func (h *SessionHandler) ChangeCashier(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	if err := s.ChangeCashier(); err != nil {
		sessionError(c, err)
		return
	}
	util.Success(c, util.Response(h.sessionResp(s)))
}

// SelectBank 选择银行
func (h *SessionHandler) SelectBank(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	var req selectBankReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "please select a bank")
		return
	}
	if err := s.SelectBank(req.Bank); err != nil {
		sessionError(c, err)
		return
	}
	util.Success(c, util.Response(h.sessionResp(s)))
}

// EndSession 结束会话并清除会话指针，下次会使用新的账本文件
func (h *SessionHandler) EndSession(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.Sessions.End(s.ID); err != nil {
		sessionError(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	util.Success(c, util.Response{
		"message": "Session ended. Start a new session to continue.",
	})
}

// Options 返回固定的收银员和银行名单
func Options(c *gin.Context) {
	util.Success(c, util.Response{
		"cashiers": models.Cashiers,
		"banks":    models.Banks,
	})
}
