package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
	"github.com/Ahammedsa/server-site-fitenss/internal/http/middleware"
	"github.com/Ahammedsa/server-site-fitenss/internal/service"
)

// SessionHandler issues and clears the session cookie.
type SessionHandler struct {
	sessions   *service.SessionService
	production bool
}

func NewSessionHandler(sessions *service.SessionService, cfg config.Config) *SessionHandler {
	return &SessionHandler{sessions: sessions, production: cfg.IsProduction()}
}

// Issue handles POST /jwt.
func (h *SessionHandler) Issue(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	token, _, err := h.sessions.Issue(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setCookie(c, token, int(h.sessions.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout handles GET /logout. The cookie is cleared even when the token
// cannot be put on the denylist.
func (h *SessionHandler) Logout(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	h.setCookie(c, "", -1)
	if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SessionHandler) setCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteStrictMode
	if h.production {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(
		middleware.SessionCookie,
		value,
		maxAge,
		"/",
		"",
		h.production,
		true,
	)
}
