//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

func setupPostgres(t *testing.T) repository.Stores {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL must be set for postgres integration tests")
	}
	ctx := context.Background()
	require.NoError(t, repository.Migrate(ctx, dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE users, trainers, classes`)
	require.NoError(t, err)
	return repository.NewPostgresStores(pool)
}

func setupMongo(t *testing.T) repository.Stores {
	t.Helper()

	uri := os.Getenv("DB_URI")
	if uri == "" {
		t.Skip("DB_URI must be set for mongo integration tests")
	}
	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database(fmt.Sprintf("fitness_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	require.NoError(t, repository.EnsureIndexes(ctx, db))
	return repository.NewMongoStores(db)
}

func TestPostgresStores(t *testing.T) {
	exerciseStores(t, setupPostgres(t))
}

func TestMongoStores(t *testing.T) {
	exerciseStores(t, setupMongo(t))
}

func exerciseStores(t *testing.T, stores repository.Stores) {
	ctx := context.Background()
	require.NoError(t, stores.Health.Ping(ctx))

	res, err := stores.Users.Upsert(ctx, "a@x.com", "100", domain.Document{"status": "Requested", "timestamp": int64(10)})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.UpsertedCount)

	res, err = stores.Users.Upsert(ctx, "a@x.com", "101", domain.Document{"name": "A"})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.MatchedCount)
	require.Zero(t, res.UpsertedCount)

	user, err := stores.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "100", user.ID)
	require.Equal(t, domain.StatusRequested, user.Status)
	require.Equal(t, int64(10), user.Timestamp)
	require.Equal(t, "A", user.Profile["name"])

	res, err = stores.Users.Update(ctx, "a@x.com", domain.Document{"status": "Verified", "role": "trainer"})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.MatchedCount)
	require.Equal(t, int64(1), res.ModifiedCount)

	res, err = stores.Users.Update(ctx, "a@x.com", domain.Document{"tags": []any{"yoga", "boxing"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.ModifiedCount)

	// A shorter array is a different value, not a no-op.
	res, err = stores.Users.Update(ctx, "a@x.com", domain.Document{"tags": []any{"yoga"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.MatchedCount)
	require.Equal(t, int64(1), res.ModifiedCount)

	res, err = stores.Users.Update(ctx, "a@x.com", domain.Document{"tags": []any{"yoga"}})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.MatchedCount)
	require.Zero(t, res.ModifiedCount)

	res, err = stores.Users.Update(ctx, "nobody@x.com", domain.Document{"status": "Verified"})
	require.NoError(t, err)
	require.Zero(t, res.MatchedCount)

	byID, err := stores.Users.GetByID(ctx, "100")
	require.NoError(t, err)
	require.Equal(t, domain.RoleTrainer, byID.Role)

	requested, err := stores.Users.List(ctx, domain.UserFilter{Status: domain.StatusRequested})
	require.NoError(t, err)
	require.Empty(t, requested)

	_, err = stores.Users.GetByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = stores.Users.Insert(ctx, domain.User{ID: "102", Email: "a@x.com"})
	require.ErrorIs(t, err, domain.ErrStorage)

	_, err = stores.Trainers.Insert(ctx, domain.Document{"_id": "t1", "name": "Sam"})
	require.NoError(t, err)
	trainer, err := stores.Trainers.GetByID(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "Sam", trainer["name"])

	for _, id := range []string{"c1", "c2", "c3"} {
		_, err := stores.Classes.Insert(ctx, domain.Document{"_id": id})
		require.NoError(t, err)
	}
	page, err := stores.Classes.List(ctx, domain.Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	count, err := stores.Classes.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
}
