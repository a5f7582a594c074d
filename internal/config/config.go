package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the repository layer.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Status change policies for the /user route.
const (
	PolicyOneDirectional = "one-directional"
	PolicyOverwrite      = "overwrite"
)

// Config contains runtime configuration values.
type Config struct {
	Environment          string
	HTTPPort             string
	StorageDriver        string
	MongoURI             string
	MongoDatabase        string
	DatabaseURL          string
	AccessTokenSecret    string
	AccessTokenTTL       time.Duration
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	ServiceName          string
	RateLimitRPM         int
	WriteRateLimitRPM    int
	TelemetryEndpoint    string
	TelemetryInsecure    bool
	TelemetrySampleRatio float64
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
	AdminEmail           string
	StatusChangePolicy   string
}

var defaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
	"https://the-fitness-eca73.web.app",
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	secret := strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET"))
	if secret == "" {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	cfg := Config{
		Environment:          getEnv("APP_ENV", "development"),
		HTTPPort:             getEnv("PORT", "5000"),
		StorageDriver:        strings.ToLower(getEnv("STORAGE_DRIVER", DriverMongo)),
		MongoURI:             strings.TrimSpace(os.Getenv("DB_URI")),
		MongoDatabase:        getEnv("DB_NAME", "theFitness"),
		DatabaseURL:          strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AccessTokenSecret:    secret,
		AccessTokenTTL:       getDuration("ACCESS_TOKEN_TTL", 365*24*time.Hour),
		RedisAddr:            strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getInt("REDIS_DB", 0),
		ServiceName:          getEnv("SERVICE_NAME", "the-fitness"),
		RateLimitRPM:         getInt("RATE_LIMIT_RPM", 600),
		WriteRateLimitRPM:    getInt("RATE_LIMIT_WRITE_RPM", 120),
		TelemetryEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure:    getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		TelemetrySampleRatio: getFloat("OTEL_TRACES_SAMPLER_RATIO", 1),
		CORSAllowedOrigins:   getList("CORS_ALLOWED_ORIGINS", defaultOrigins),
		CORSAllowedMethods:   getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}),
		CORSAllowedHeaders:   getList("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type"}),
		CORSAllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
		AdminEmail:           strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		StatusChangePolicy:   strings.ToLower(getEnv("STATUS_CHANGE_POLICY", PolicyOneDirectional)),
	}

	switch cfg.StorageDriver {
	case DriverMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("DB_URI is required for the mongo driver")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.StatusChangePolicy {
	case PolicyOneDirectional, PolicyOverwrite:
	default:
		return Config{}, fmt.Errorf("unknown STATUS_CHANGE_POLICY %q", cfg.StatusChangePolicy)
	}

	return cfg, nil
}

// IsProduction reports whether cookies must be issued for cross-site HTTPS use.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && f >= 0 {
			return f
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		var cleaned []string
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
