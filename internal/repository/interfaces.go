package repository

import (
	"context"
	"time"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

// UserRepository exposes persistence for platform users, keyed by email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Insert(ctx context.Context, user domain.User) (domain.WriteResult, error)
	// Update applies set to the record matching email without creating one.
	Update(ctx context.Context, email string, set domain.Document) (domain.WriteResult, error)
	// Upsert applies set to the record matching email, creating it with id when absent.
	Upsert(ctx context.Context, email, id string, set domain.Document) (domain.WriteResult, error)
}

// TrainerRepository stores trainer profiles.
type TrainerRepository interface {
	List(ctx context.Context) ([]domain.Document, error)
	GetByID(ctx context.Context, id string) (domain.Document, error)
	Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error)
}

// ClassRepository stores bookable classes.
type ClassRepository interface {
	List(ctx context.Context, page domain.Page) ([]domain.Document, error)
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error)
}

// TokenDenylist remembers revoked session tokens until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores groups the repositories of one storage driver.
type Stores struct {
	Users    UserRepository
	Trainers TrainerRepository
	Classes  ClassRepository
	Health   Pinger
}
