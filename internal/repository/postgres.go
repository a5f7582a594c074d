package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository    = (*PostgresUserRepo)(nil)
	_ TrainerRepository = (*PostgresTrainerRepo)(nil)
	_ ClassRepository   = (*PostgresClassRepo)(nil)
	_ Pinger            = (*pgxpool.Pool)(nil)
)

const uniqueViolation = "23505"

// NewPostgresStores builds the JSONB backed stores on an open pool.
func NewPostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Users:    NewPostgresUserRepo(pool),
		Trainers: NewPostgresTrainerRepo(pool),
		Classes:  NewPostgresClassRepo(pool),
		Health:   pool,
	}
}

// PostgresUserRepo implements UserRepository on a JSONB users table.
type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT doc FROM users WHERE email = $1`, email)
	return scanUser(row, "get user by email")
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT doc FROM users WHERE id = $1`, id)
	return scanUser(row, "get user by id")
}

func (r *PostgresUserRepo) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	query := `SELECT doc FROM users ORDER BY created_at, id`
	args := []any{}
	if filter.Status != domain.StatusUnset {
		query = `SELECT doc FROM users WHERE doc->>'status' = $1 ORDER BY created_at, id`
		args = append(args, string(filter.Status))
	}

	docs, err := queryDocuments(ctx, r.pool, "list users", query, args...)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		user, err := domain.UserFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("list users: %w: %w", domain.ErrStorage, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *PostgresUserRepo) Insert(ctx context.Context, user domain.User) (domain.WriteResult, error) {
	payload, err := json.Marshal(user.Document())
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("encode user: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (id, email, doc) VALUES ($1, $2, $3::jsonb)`,
		user.ID, user.Email, payload,
	)
	if err != nil {
		return domain.WriteResult{}, storageError("insert user", err)
	}
	return domain.WriteResult{Acknowledged: true, InsertedID: user.ID}, nil
}

// Update merges set into the stored document. A patch whose every key
// already holds an equal value counts as matched but not modified.
func (r *PostgresUserRepo) Update(ctx context.Context, email string, set domain.Document) (domain.WriteResult, error) {
	payload, err := json.Marshal(set.Without(domain.FieldID, domain.FieldEmail))
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("encode update: %w", err)
	}

	var matched, modified int64
	err = r.pool.QueryRow(ctx, `
		WITH target AS (
			SELECT id, NOT EXISTS (
				SELECT 1 FROM jsonb_each($2::jsonb) AS p(key, value)
				WHERE users.doc -> p.key IS DISTINCT FROM p.value
			) AS unchanged
			FROM users WHERE email = $1
		), updated AS (
			UPDATE users u SET doc = u.doc || $2::jsonb
			FROM target t
			WHERE u.id = t.id AND NOT t.unchanged
			RETURNING u.id
		)
		SELECT (SELECT count(*) FROM target), (SELECT count(*) FROM updated)`,
		email, payload,
	).Scan(&matched, &modified)
	if err != nil {
		return domain.WriteResult{}, storageError("update user", err)
	}
	return domain.WriteResult{Acknowledged: true, MatchedCount: matched, ModifiedCount: modified}, nil
}

func (r *PostgresUserRepo) Upsert(ctx context.Context, email, id string, set domain.Document) (domain.WriteResult, error) {
	doc := set.Without(domain.FieldID, domain.FieldEmail)
	doc[domain.FieldID] = id
	doc[domain.FieldEmail] = email
	payload, err := json.Marshal(doc)
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("encode upsert: %w", err)
	}

	// The stored _id survives a conflict because EXCLUDED.doc is merged
	// without its own _id.
	var inserted bool
	err = r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, doc) VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (email) DO UPDATE SET doc = users.doc || (EXCLUDED.doc - '_id')
		RETURNING (xmax = 0)`,
		id, email, payload,
	).Scan(&inserted)
	if err != nil {
		return domain.WriteResult{}, storageError("upsert user", err)
	}
	if inserted {
		return domain.WriteResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
	}
	return domain.WriteResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

// PostgresTrainerRepo implements TrainerRepository.
type PostgresTrainerRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTrainerRepo(pool *pgxpool.Pool) *PostgresTrainerRepo {
	return &PostgresTrainerRepo{pool: pool}
}

func (r *PostgresTrainerRepo) List(ctx context.Context) ([]domain.Document, error) {
	return queryDocuments(ctx, r.pool, "list trainers", `SELECT doc FROM trainers ORDER BY created_at, id`)
}

func (r *PostgresTrainerRepo) GetByID(ctx context.Context, id string) (domain.Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT doc FROM trainers WHERE id = $1`, id)
	return scanDocument(row, "get trainer")
}

func (r *PostgresTrainerRepo) Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	return insertDocument(ctx, r.pool, "trainers", doc)
}

// PostgresClassRepo implements ClassRepository.
type PostgresClassRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresClassRepo(pool *pgxpool.Pool) *PostgresClassRepo {
	return &PostgresClassRepo{pool: pool}
}

func (r *PostgresClassRepo) List(ctx context.Context, page domain.Page) ([]domain.Document, error) {
	if page.Limit > 0 {
		return queryDocuments(ctx, r.pool, "list classes",
			`SELECT doc FROM classes ORDER BY created_at, id OFFSET $1 LIMIT $2`,
			page.Skip, page.Limit,
		)
	}
	return queryDocuments(ctx, r.pool, "list classes", `SELECT doc FROM classes ORDER BY created_at, id`)
}

func (r *PostgresClassRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM classes`).Scan(&n); err != nil {
		return 0, storageError("count classes", err)
	}
	return n, nil
}

func (r *PostgresClassRepo) Insert(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	return insertDocument(ctx, r.pool, "classes", doc)
}

func insertDocument(ctx context.Context, pool *pgxpool.Pool, table string, doc domain.Document) (domain.WriteResult, error) {
	id := doc.ID()
	if id == "" {
		return domain.WriteResult{}, fmt.Errorf("insert into %s: %w: missing _id", table, domain.ErrValidation)
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("encode %s document: %w", table, err)
	}
	// table is one of the fixed names above, never caller input.
	query := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)`, pgx.Identifier{table}.Sanitize())
	if _, err := pool.Exec(ctx, query, id, payload); err != nil {
		return domain.WriteResult{}, storageError("insert into "+table, err)
	}
	return domain.WriteResult{Acknowledged: true, InsertedID: id}, nil
}

func queryDocuments(ctx context.Context, pool *pgxpool.Pool, op, query string, args ...any) ([]domain.Document, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError(op, err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Document, error) {
		var raw []byte
		if err := row.Scan(&raw); err != nil {
			return nil, err
		}
		return decodeDocument(raw)
	})
	if err != nil {
		return nil, storageError(op, err)
	}
	return docs, nil
}

func scanUser(row pgx.Row, op string) (domain.User, error) {
	doc, err := scanDocument(row, op)
	if err != nil {
		return domain.User{}, err
	}
	user, err := domain.UserFromDocument(doc)
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
	return user, nil
}

func scanDocument(row pgx.Row, op string) (domain.Document, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storageError(op, err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, storageError(op, err)
	}
	return doc, nil
}

// decodeDocument keeps numbers as json.Number so integer timestamps survive.
func decodeDocument(raw []byte) (domain.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc domain.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func storageError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: duplicate key %s", op, domain.ErrStorage, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
