package middleware

import (
	"net/http"

	"cred-entry/internal/session"
	"cred-entry/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"

	// CurrentSessionKey 在 gin.Context 里保存当前会话
	CurrentSessionKey = "currentSession"
)

// SessionMiddleware 根据会话 ID 找到当前会话，并放入 context。
func SessionMiddleware(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string

		// 1) Header: X-Session-ID
		id = c.GetHeader(SessionHeader)

		// 2) URL 查询参数 ?session_id=xxx（用于导出下载等无法自定义 Header 的场景）
		if id == "" {
			id = c.Query(SessionCookie)
		}

		// 3) Cookie session_id
		if id == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				id = cookie
			}
		}

		if id == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeNoSession, "no session, start one first")
			c.Abort()
			return
		}

		s, err := mgr.Get(id)
		if err != nil {
			util.Error(c, http.StatusUnauthorized, util.CodeNoSession, "session expired or ended, start a new one")
			c.Abort()
			return
		}

		c.Set(CurrentSessionKey, s)
		c.Next()
	}
}

// CurrentSession 取出 SessionMiddleware 放入的会话
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(CurrentSessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}
