package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/Ahammedsa/server-site-fitenss/internal/adapter/cache"
	"github.com/Ahammedsa/server-site-fitenss/internal/bootstrap"
	"github.com/Ahammedsa/server-site-fitenss/internal/config"
	httptransport "github.com/Ahammedsa/server-site-fitenss/internal/http"
	"github.com/Ahammedsa/server-site-fitenss/internal/http/handler"
	httpmiddleware "github.com/Ahammedsa/server-site-fitenss/internal/http/middleware"
	"github.com/Ahammedsa/server-site-fitenss/internal/jwt"
	apimiddleware "github.com/Ahammedsa/server-site-fitenss/internal/middleware"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
	"github.com/Ahammedsa/server-site-fitenss/internal/server"
	"github.com/Ahammedsa/server-site-fitenss/internal/service"
	"github.com/Ahammedsa/server-site-fitenss/internal/service/lifecycle"
	"github.com/Ahammedsa/server-site-fitenss/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newStores,
			newUserRepository,
			newTrainerRepository,
			newClassRepository,
			newPinger,
			newDenylist,
			newRateLimiter,
			newTokenGenerator,
			newLifecycleManager,
			service.NewUserService,
			service.NewCatalogService,
			service.NewSessionService,
			service.NewHealthService,
			handler.NewHealthHandler,
			handler.NewSessionHandler,
			handler.NewUserHandler,
			handler.NewLifecycleHandler,
			handler.NewCatalogHandler,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.EnsureAdmin, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newUserRepository(s repository.Stores) repository.UserRepository {
	return s.Users
}

func newTrainerRepository(s repository.Stores) repository.TrainerRepository {
	return s.Trainers
}

func newClassRepository(s repository.Stores) repository.ClassRepository {
	return s.Classes
}

func newPinger(s repository.Stores) repository.Pinger {
	return s.Health
}

// newDenylist falls back to a no-op denylist when Redis is not configured,
// in which case logout only clears the cookie.
func newDenylist(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (repository.TokenDenylist, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, session revocation disabled")
		return cacheadapter.NoopDenylist{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return cacheadapter.NewRedisDenylist(client), nil
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM, cfg.WriteRateLimitRPM)
}

func newTokenGenerator(cfg config.Config) *jwt.Generator {
	return jwt.NewGenerator(cfg.AccessTokenSecret, cfg.AccessTokenTTL, cfg.ServiceName)
}

func newLifecycleManager(users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) *lifecycle.Manager {
	return lifecycle.NewManager(users, node, logger)
}

func newAuthMiddleware(sessions *service.SessionService, users *service.UserService, logger *zap.Logger) *httpmiddleware.Auth {
	return httpmiddleware.NewAuth(sessions, users, logger)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				logger.Info("The Fitness is running", zap.String("addr", addr), zap.String("storage", cfg.StorageDriver))
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
