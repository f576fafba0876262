package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	// Client
	ServerURL      string
	RequestTimeout time.Duration
	StorageDir     string
	LogLevel       string

	// Stub backend (local development only)
	Stub StubConfig
}

type StubConfig struct {
	HTTPAddr      string
	RedisAddr     string
	RedisPass     string
	JWTSecret     string
	TokenTTL      time.Duration
	MaxAttempts   int
	LockoutWindow time.Duration
	SeedUsersPath string
	InventoryPath string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		ServerURL:      getEnv("HORIZON_SERVER", "http://localhost:8600"),
		RequestTimeout: getEnvDuration("HORIZON_REQUEST_TIMEOUT", 15*time.Second),
		StorageDir:     getEnv("HORIZON_STORAGE_DIR", ""),
		LogLevel:       getEnv("HORIZON_LOG_LEVEL", "info"),

		Stub: StubConfig{
			HTTPAddr:      getEnv("STUB_HTTP_ADDR", ":8600"),
			RedisAddr:     getEnv("STUB_REDIS_ADDR", ""),
			RedisPass:     getEnv("STUB_REDIS_PASS", ""),
			JWTSecret:     getEnv("STUB_JWT_SECRET", "horizon-dev-secret"),
			TokenTTL:      getEnvDuration("STUB_TOKEN_TTL", 8*time.Hour),
			MaxAttempts:   getEnvInt("STUB_MAX_LOGIN_ATTEMPTS", 5),
			LockoutWindow: getEnvDuration("STUB_LOCKOUT_WINDOW", 15*time.Minute),
			SeedUsersPath: getEnv("STUB_SEED_USERS_PATH", ""),
			InventoryPath: getEnv("STUB_INVENTORY_PATH", ""),
		},
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
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
