package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/jwt"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

// SessionService issues, checks and revokes session tokens.
type SessionService struct {
	observer
	tokens   *jwt.Generator
	denylist repository.TokenDenylist
	now      func() time.Time
}

// NewSessionService wires dependencies.
func NewSessionService(tokens *jwt.Generator, denylist repository.TokenDenylist, logger *zap.Logger) *SessionService {
	return &SessionService{observer: newObserver(logger), tokens: tokens, denylist: denylist, now: time.Now}
}

// TTL is the lifetime of issued sessions.
func (s *SessionService) TTL() time.Duration {
	return s.tokens.TTL()
}

// Issue signs a new session for email.
func (s *SessionService) Issue(ctx context.Context, email, name string) (string, domain.Identity, error) {
	_, span := s.startSpan(ctx, "SessionService.Issue")
	defer span.End()

	token, identity, err := s.tokens.Issue(email, name)
	if err != nil {
		return "", domain.Identity{}, fail(span, err)
	}
	s.audit("session.issued", "email", identity.Email, "token_id", identity.TokenID)
	return token, identity, nil
}

// Authenticate validates token and rejects revoked sessions.
func (s *SessionService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	ctx, span := s.startSpan(ctx, "SessionService.Authenticate")
	defer span.End()

	identity, err := s.tokens.Validate(token)
	if err != nil {
		return domain.Identity{}, fail(span, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err))
	}
	revoked, err := s.denylist.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return domain.Identity{}, fail(span, asStorage("check session", err))
	}
	if revoked {
		return domain.Identity{}, fail(span, fmt.Errorf("%w: session revoked", domain.ErrUnauthorized))
	}
	return identity, nil
}

// Revoke puts a still valid token on the denylist until it expires.
// Invalid tokens are ignored since they already grant nothing.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	ctx, span := s.startSpan(ctx, "SessionService.Revoke")
	defer span.End()

	if token == "" {
		return nil
	}
	identity, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	ttl := identity.ExpiresAt.Sub(s.now())
	if err := s.denylist.Revoke(ctx, identity.TokenID, ttl); err != nil {
		return fail(span, asStorage("revoke session", err))
	}
	s.audit("session.revoked", "email", identity.Email, "token_id", identity.TokenID)
	return nil
}
