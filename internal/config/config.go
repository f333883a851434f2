package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Tenancy
	BaseDomain string // platform root domain used in hostname synthesis

	// Persistence
	DatabaseURL string
	UsePostgres bool
	DBMaxConns  int
	DBMaxIdle   int

	// Settings cache
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	UseRedis         bool
	SettingsCacheTTL time.Duration

	// Domain verification
	DNSTimeout time.Duration

	// Asset storage
	AssetsAPIURL   string
	AssetsAPIToken string
	SignedURLTTL   time.Duration

	// Background tasks
	TaskMaxConcurrency int
	TaskMaxRetries     int
	TaskInitialBackoff time.Duration

	// Observability
	OTLPEndpoint string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// CORS
	AdminOrigin string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BaseDomain: getEnv("BASE_DOMAIN", "vendix.com"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		UsePostgres: getEnv("USE_POSTGRES", "true") == "true",
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 25),
		DBMaxIdle:   getEnvInt("DB_MAX_IDLE", 5),

		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		UseRedis:         getEnv("USE_REDIS", "false") == "true",
		SettingsCacheTTL: getEnvDuration("SETTINGS_CACHE_TTL", 5*time.Minute),

		DNSTimeout: getEnvDuration("DNS_TIMEOUT", 5*time.Second),

		AssetsAPIURL:   getEnv("ASSETS_API_URL", "http://localhost:8090"),
		AssetsAPIToken: getEnv("ASSETS_API_TOKEN", ""),
		SignedURLTTL:   getEnvDuration("SIGNED_URL_TTL", 15*time.Minute),

		TaskMaxConcurrency: getEnvInt("TASK_MAX_CONCURRENCY", 8),
		TaskMaxRetries:     getEnvInt("TASK_MAX_RETRIES", 3),
		TaskInitialBackoff: getEnvDuration("TASK_INITIAL_BACKOFF", 200*time.Millisecond),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSecret:    getEnv("JWT_SECRET", "vendix-default-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 30*time.Minute),

		AdminOrigin: getEnv("ADMIN_ORIGIN", "http://localhost:4200"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
