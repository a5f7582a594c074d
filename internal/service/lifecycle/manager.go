package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

var (
	// ErrMissingEmail rejects payloads without a usable email.
	ErrMissingEmail = fmt.Errorf("%w: email is required", domain.ErrValidation)
	// ErrMissingStatus rejects status changes that carry no status.
	ErrMissingStatus = fmt.Errorf("%w: status is required", domain.ErrValidation)
	// ErrUnknownIntent rejects intents outside the declared set.
	ErrUnknownIntent = fmt.Errorf("%w: unknown intent", domain.ErrValidation)
)

// Store is the slice of the user repository the manager needs.
type Store interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, email string, set domain.Document) (domain.WriteResult, error)
	Upsert(ctx context.Context, email, id string, set domain.Document) (domain.WriteResult, error)
}

// Manager decides how a user payload changes the stored user record.
type Manager struct {
	store  Store
	node   *snowflake.Node
	now    func() time.Time
	logger *zap.Logger
	tracer trace.Tracer
}

// NewManager wires the manager to its store and id generator.
func NewManager(store Store, node *snowflake.Node, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		node:   node,
		now:    time.Now,
		logger: logger,
		tracer: otel.Tracer("github.com/Ahammedsa/server-site-fitenss/internal/service/lifecycle"),
	}
}

// Apply runs one transition: a single lookup by email followed by at most
// one write.
func (m *Manager) Apply(ctx context.Context, intent Intent, payload domain.Document, opts ...Option) (Result, error) {
	ctx, span := m.startSpan(ctx, "Manager.Apply")
	defer span.End()
	span.SetAttributes(attribute.String("lifecycle.intent", intent.String()))

	o := options{policy: StatusOneDirectional}
	for _, opt := range opts {
		opt(&o)
	}

	email, err := validate(intent, payload)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	existing, err := m.store.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return m.create(ctx, span, intent, email, payload, o)
	case err != nil:
		span.RecordError(err)
		return Result{}, fmt.Errorf("lookup user: %w", asStorage(err))
	}

	var (
		set    domain.Document
		change Change
		ts     = m.timestamp(existing.Timestamp)
	)
	switch {
	case existing.Status == domain.StatusRequested && intent == PromoteToTrainer:
		set = domain.Document{
			domain.FieldRole:      string(domain.RoleTrainer),
			domain.FieldStatus:    string(domain.StatusVerified),
			domain.FieldTimestamp: ts,
		}
		change = ChangePromoted
	case intent == RequestStatusChange &&
		(existing.Status == domain.StatusRequested || o.policy == StatusOverwrite):
		set = domain.Document{
			domain.FieldStatus:    payload[domain.FieldStatus],
			domain.FieldTimestamp: ts,
		}
		change = ChangeStatusSet
	default:
		m.audit("user.lifecycle.unchanged", "intent", intent.String(), "email", email, "status", string(existing.Status))
		return Result{Outcome: Unchanged, User: existing}, nil
	}

	write, err := m.store.Update(ctx, email, set)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("update user: %w", asStorage(err))
	}
	if write.MatchedCount == 0 || (change == ChangePromoted && write.ModifiedCount == 0) {
		span.RecordError(domain.ErrNoChange)
		return Result{}, fmt.Errorf("update user %s: %w", email, domain.ErrNoChange)
	}

	m.audit("user.lifecycle.updated", "intent", intent.String(), "email", email, "change", string(change))
	return Result{Outcome: Updated, Change: change, User: existing.Apply(set), Write: &write}, nil
}

func (m *Manager) create(ctx context.Context, span trace.Span, intent Intent, email string, payload domain.Document, o options) (Result, error) {
	set := payload.Without(domain.FieldID, domain.FieldEmail)
	if o.createRole != domain.RoleUnset {
		set[domain.FieldRole] = string(o.createRole)
	}
	if o.createStatus != domain.StatusUnset {
		set[domain.FieldStatus] = string(o.createStatus)
	}
	set[domain.FieldTimestamp] = m.timestamp(0)

	id := m.node.Generate().String()
	write, err := m.store.Upsert(ctx, email, id, set)
	if err != nil {
		span.RecordError(err)
		return Result{}, fmt.Errorf("create user: %w", asStorage(err))
	}

	user := domain.User{Email: email}.Apply(set)
	outcome := Created
	if write.UpsertedCount > 0 {
		user.ID = write.UpsertedID
		if user.ID == "" {
			user.ID = id
		}
	} else {
		// A concurrent request created the record between lookup and write;
		// the upsert merged into it.
		outcome = Updated
	}

	m.audit("user.lifecycle."+string(outcome), "intent", intent.String(), "email", email, "user_id", user.ID)
	return Result{Outcome: outcome, User: user, Write: &write}, nil
}

// timestamp returns now in Unix milliseconds, never earlier than prev.
func (m *Manager) timestamp(prev int64) int64 {
	return max(m.now().UnixMilli(), prev)
}

func validate(intent Intent, payload domain.Document) (string, error) {
	if !intent.valid() {
		return "", ErrUnknownIntent
	}
	email, _ := payload[domain.FieldEmail].(string)
	if strings.TrimSpace(email) == "" {
		return "", ErrMissingEmail
	}
	if intent == RequestStatusChange {
		status, _ := payload[domain.FieldStatus].(string)
		if strings.TrimSpace(status) == "" {
			return "", ErrMissingStatus
		}
	}
	return email, nil
}

func asStorage(err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

func (m *Manager) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if m == nil || m.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return m.tracer.Start(ctx, name)
}

func (m *Manager) audit(event string, attrs ...any) {
	logger := m.logger
	if logger == nil {
		logger = zap.L()
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}
