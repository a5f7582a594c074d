package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

const identityKey = "identity"

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFromContext returns the authenticated identity stored in ctx.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return identity, ok
}

// SetIdentity attaches identity to both the gin context and the request
// context so code below the handler can read it without gin.
func SetIdentity(c *gin.Context, identity domain.Identity) {
	c.Set(identityKey, identity)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
}

// GetIdentity exposes the authenticated identity to handlers.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	if value, ok := c.Get(identityKey); ok {
		identity, ok := value.(domain.Identity)
		return identity, ok
	}
	return IdentityFromContext(c.Request.Context())
}
