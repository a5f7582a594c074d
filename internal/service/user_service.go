package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

// UserService serves the read paths and profile edits of platform users.
// Role and status transitions go through lifecycle.Manager instead.
type UserService struct {
	observer
	users repository.UserRepository
	now   func() time.Time
}

// NewUserService wires dependencies.
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{observer: newObserver(logger), users: users, now: time.Now}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.startSpan(ctx, "UserService.List")
	defer span.End()

	users, err := s.users.List(ctx, domain.UserFilter{})
	if err != nil {
		return nil, fail(span, asStorage("list users", err))
	}
	return users, nil
}

// ListRequested returns users with a pending trainer application.
func (s *UserService) ListRequested(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.startSpan(ctx, "UserService.ListRequested")
	defer span.End()

	users, err := s.users.List(ctx, domain.UserFilter{Status: domain.StatusRequested})
	if err != nil {
		return nil, fail(span, asStorage("list requested users", err))
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "UserService.GetByID")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return domain.User{}, fail(span, fmt.Errorf("%w: id is required", domain.ErrValidation))
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fail(span, asStorage("get user", err))
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "UserService.GetByEmail")
	defer span.End()

	if strings.TrimSpace(email) == "" {
		return domain.User{}, fail(span, fmt.Errorf("%w: email is required", domain.ErrValidation))
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, fail(span, asStorage("get user", err))
	}
	return user, nil
}

// UpdateProfile merges payload into the user record without creating it.
// Email, role and status are not profile fields and are dropped from the
// patch. The timestamp never moves backwards.
func (s *UserService) UpdateProfile(ctx context.Context, email string, payload domain.Document) (domain.WriteResult, error) {
	ctx, span := s.startSpan(ctx, "UserService.UpdateProfile")
	defer span.End()

	if strings.TrimSpace(email) == "" {
		return domain.WriteResult{}, fail(span, fmt.Errorf("%w: email is required", domain.ErrValidation))
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.WriteResult{Acknowledged: true}, nil
	}
	if err != nil {
		return domain.WriteResult{}, fail(span, asStorage("update profile", err))
	}

	set := payload.Without(domain.FieldID, domain.FieldEmail, domain.FieldRole, domain.FieldStatus)
	set[domain.FieldTimestamp] = max(s.now().UnixMilli(), existing.Timestamp)
	res, err := s.users.Update(ctx, email, set)
	if err != nil {
		return domain.WriteResult{}, fail(span, asStorage("update profile", err))
	}
	span.SetAttributes(attribute.Int64("user.matched", res.MatchedCount))

	s.audit("user.profile.updated", "email", email, "matched", res.MatchedCount, "fields", len(set))
	return res, nil
}

// IsAdmin reports whether the user with email holds the admin role.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	ctx, span := s.startSpan(ctx, "UserService.IsAdmin")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fail(span, asStorage("check admin", err))
	}
	return user.Role == domain.RoleAdmin, nil
}
