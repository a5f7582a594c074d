package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// SessionAuthenticator validates session tokens.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// AdminChecker resolves whether an email belongs to an admin.
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Auth verifies session tokens and admin roles.
type Auth struct {
	sessions SessionAuthenticator
	admins   AdminChecker
	logger   *zap.Logger
}

func NewAuth(sessions SessionAuthenticator, admins AdminChecker, logger *zap.Logger) *Auth {
	if logger == nil {
		logger = zap.L()
	}
	return &Auth{sessions: sessions, admins: admins, logger: logger}
}

// VerifyToken requires a valid, unrevoked session and attaches its identity.
func (m *Auth) VerifyToken(c *gin.Context) {
	token := TokenFromRequest(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
		return
	}
	identity, err := m.sessions.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
			return
		}
		m.logger.Error("authenticate session", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	SetIdentity(c, identity)
	c.Next()
}

// VerifyAdmin must run after VerifyToken.
func (m *Auth) VerifyAdmin(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Forbidden Access"})
		return
	}
	isAdmin, err := m.admins.IsAdmin(c.Request.Context(), identity.Email)
	if err != nil {
		m.logger.Error("check admin role", zap.String("email", identity.Email), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !isAdmin {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Forbidden Access"})
		return
	}
	c.Next()
}

// TokenFromRequest reads the session cookie, falling back to a Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
