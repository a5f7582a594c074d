package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

const connectTimeout = 10 * time.Second

// newStores opens the storage driver named by STORAGE_DRIVER.
func newStores(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.Stores, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		return newMongoStores(lc, cfg)
	case config.DriverPostgres:
		return newPostgresStores(lc, cfg)
	default:
		logger.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryStores(), nil
	}
}

func newMongoStores(lc fx.Lifecycle, cfg config.Config) (repository.Stores, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(serverAPI))
	if err != nil {
		return repository.Stores{}, fmt.Errorf("connect mongo: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return repository.Stores{}, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return repository.Stores{}, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return repository.NewMongoStores(db), nil
}

func newPostgresStores(lc fx.Lifecycle, cfg config.Config) (repository.Stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return repository.Stores{}, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return repository.Stores{}, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return repository.Stores{}, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return repository.NewPostgresStores(pool), nil
}
