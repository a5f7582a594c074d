package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("STATUS_CHANGE_POLICY", "")
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("RATE_LIMIT_WRITE_RPM", "")
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "5000", cfg.HTTPPort)
	require.Equal(t, config.DriverMemory, cfg.StorageDriver)
	require.Equal(t, 365*24*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, config.PolicyOneDirectional, cfg.StatusChangePolicy)
	require.True(t, cfg.CORSAllowCredentials)
	require.Contains(t, cfg.CORSAllowedOrigins, "https://the-fitness-eca73.web.app")
	require.Equal(t, 120, cfg.WriteRateLimitRPM)
	require.Equal(t, 1.0, cfg.TelemetrySampleRatio)
}

func TestLoadRequiresSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ACCESS_TOKEN_SECRET", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadRequiresDriverURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("DB_URI", "")

	_, err := config.Load()
	require.ErrorContains(t, err, "DB_URI")

	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err = config.Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORAGE_DRIVER", "cassandra")
	_, err = config.Load()
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("ACCESS_TOKEN_TTL", "2h")
	t.Setenv("STATUS_CHANGE_POLICY", "Overwrite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ADMIN_EMAIL", " Admin@Example.com ")
	t.Setenv("RATE_LIMIT_WRITE_RPM", "30")
	t.Setenv("OTEL_TRACES_SAMPLER_RATIO", "0.25")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "8081", cfg.HTTPPort)
	require.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, config.PolicyOverwrite, cfg.StatusChangePolicy)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "Admin@Example.com", cfg.AdminEmail)
	require.Equal(t, 30, cfg.WriteRateLimitRPM)
	require.Equal(t, 0.25, cfg.TelemetrySampleRatio)

	t.Setenv("STATUS_CHANGE_POLICY", "sometimes")
	_, err = config.Load()
	require.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	require.True(t, config.Config{Environment: "production"}.IsProduction())
	require.False(t, config.Config{Environment: "development"}.IsProduction())
}
