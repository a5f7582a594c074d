package repository

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository    = (*MemoryUserRepo)(nil)
	_ TrainerRepository = (*MemoryTrainerRepo)(nil)
	_ ClassRepository   = (*MemoryClassRepo)(nil)
	_ TokenDenylist     = (*MemoryDenylist)(nil)
)

// NewMemoryStores returns process-local stores for development and tests.
func NewMemoryStores() Stores {
	return Stores{
		Users:    NewMemoryUserRepo(),
		Trainers: &MemoryTrainerRepo{},
		Classes:  &MemoryClassRepo{},
		Health:   noopPinger{},
	}
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

// MemoryUserRepo keeps users in a map keyed by email.
type MemoryUserRepo struct {
	mu     sync.Mutex
	byMail map[string]domain.Document
	order  []string
	writes int
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{byMail: make(map[string]domain.Document)}
}

// Writes reports how many write calls reached the store.
func (r *MemoryUserRepo) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Len reports the number of stored users.
func (r *MemoryUserRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byMail)
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byMail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return domain.UserFromDocument(doc.Clone())
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.byMail {
		if doc.ID() == id {
			return domain.UserFromDocument(doc.Clone())
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *MemoryUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.order))
	for _, email := range r.order {
		user, err := domain.UserFromDocument(r.byMail[email].Clone())
		if err != nil {
			return nil, fmt.Errorf("list users: %w: %w", domain.ErrStorage, err)
		}
		if filter.Status != domain.StatusUnset && user.Status != filter.Status {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *MemoryUserRepo) Insert(ctx context.Context, user domain.User) (domain.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if _, exists := r.byMail[user.Email]; exists {
		return domain.WriteResult{}, fmt.Errorf("insert user: %w: duplicate email", domain.ErrStorage)
	}
	r.byMail[user.Email] = user.Document()
	r.order = append(r.order, user.Email)
	return domain.WriteResult{Acknowledged: true, InsertedID: user.ID}, nil
}

func (r *MemoryUserRepo) Update(ctx context.Context, email string, set domain.Document) (domain.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	doc, ok := r.byMail[email]
	if !ok {
		return domain.WriteResult{Acknowledged: true}, nil
	}
	modified := mergeDocument(doc, set.Without(domain.FieldID, domain.FieldEmail))
	return domain.WriteResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
}

func (r *MemoryUserRepo) Upsert(ctx context.Context, email, id string, set domain.Document) (domain.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	patch := set.Without(domain.FieldID, domain.FieldEmail)
	if doc, ok := r.byMail[email]; ok {
		modified := mergeDocument(doc, patch)
		return domain.WriteResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
	}
	doc := patch
	doc[domain.FieldID] = id
	doc[domain.FieldEmail] = email
	r.byMail[email] = doc
	r.order = append(r.order, email)
	return domain.WriteResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
}

// memoryDocuments keeps schemaless documents in insertion order.
type memoryDocuments struct {
	mu   sync.Mutex
	docs []domain.Document
}

func (r *memoryDocuments) page(p domain.Page) []domain.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := int64(len(r.docs))
	start := min(max(p.Skip, 0), total)
	end := total
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	out := make([]domain.Document, 0, end-start)
	for _, doc := range r.docs[start:end] {
		out = append(out, doc.Clone())
	}
	return out
}

func (r *memoryDocuments) get(id string) (domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.ID() == id {
			return doc.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryDocuments) insert(doc domain.Document) domain.WriteResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := doc.Clone()
	r.docs = append(r.docs, stored)
	return domain.WriteResult{Acknowledged: true, InsertedID: stored.ID()}
}

func (r *memoryDocuments) count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.docs))
}

// MemoryTrainerRepo is the in-memory TrainerRepository.
type MemoryTrainerRepo struct {
	store memoryDocuments
}

func (r *MemoryTrainerRepo) List(ctx context.Context) ([]domain.Document, error) {
	return r.store.page(domain.Page{}), nil
}

func (r *MemoryTrainerRepo) GetByID(ctx context.Context, id string) (domain.Document, error) {
	return r.store.get(id)
}

func (r *MemoryTrainerRepo) Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	return r.store.insert(doc), nil
}

// MemoryClassRepo is the in-memory ClassRepository.
type MemoryClassRepo struct {
	store memoryDocuments
}

func (r *MemoryClassRepo) List(ctx context.Context, page domain.Page) ([]domain.Document, error) {
	return r.store.page(page), nil
}

func (r *MemoryClassRepo) Count(ctx context.Context) (int64, error) {
	return r.store.count(), nil
}

func (r *MemoryClassRepo) Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	return r.store.insert(doc), nil
}

// MemoryDenylist is a TokenDenylist for single-process deployments.
type MemoryDenylist struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{now: time.Now, revoked: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = d.now().Add(ttl)
	return nil
}

func (d *MemoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if d.now().After(until) {
		delete(d.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func mergeDocument(dst, set domain.Document) int64 {
	var changed bool
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if prev, ok := dst[k]; !ok || !reflect.DeepEqual(prev, set[k]) {
			changed = true
		}
		dst[k] = set[k]
	}
	if changed {
		return 1
	}
	return 0
}
