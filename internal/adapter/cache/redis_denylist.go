package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

const denylistPrefix = "fitness:revoked:"

// RedisDenylist implements TokenDenylist backed by Redis keys with TTL.
type RedisDenylist struct {
	client redis.UniversalClient
}

var _ repository.TokenDenylist = (*RedisDenylist)(nil)

// NewRedisDenylist constructs a Redis-backed denylist.
func NewRedisDenylist(client redis.UniversalClient) *RedisDenylist {
	return &RedisDenylist{client: client}
}

// Revoke marks the token id as revoked until ttl elapses.
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, denylistPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id is on the denylist.
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, denylistPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("check revoked token: %w", err)
	}
}

// NoopDenylist never revokes. It is used when Redis is not configured.
type NoopDenylist struct{}

var _ repository.TokenDenylist = NoopDenylist{}

func (NoopDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
