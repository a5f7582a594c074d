package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

// EnsureAdmin grants the admin role to ADMIN_EMAIL on start, creating the
// user when missing. It does nothing when ADMIN_EMAIL is unset.
func EnsureAdmin(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureAdmin(ctx, cfg, users, node, logger)
		},
	})
}

func ensureAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) error {
	email := cfg.AdminEmail
	if email == "" {
		return nil
	}

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.Role == domain.RoleAdmin:
		return nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("bootstrap lookup user: %w", err)
	}

	set := domain.Document{
		domain.FieldRole:      string(domain.RoleAdmin),
		domain.FieldTimestamp: max(time.Now().UnixMilli(), existing.Timestamp),
	}
	if existing.Status == domain.StatusUnset {
		set[domain.FieldStatus] = string(domain.StatusVerified)
	}
	res, err := users.Upsert(ctx, email, node.Generate().String(), set)
	if err != nil {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap admin user ensured",
			zap.String("email", email),
			zap.Bool("created", res.UpsertedCount > 0),
		)
	}
	return nil
}
