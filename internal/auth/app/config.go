package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AccessSecret  string // Required: HMAC secret for access tokens
	RefreshSecret string // Required: HMAC secret for refresh tokens

	Issuer          string        // Optional: issuer claim for tokens (default: journal-auth)
	Audience        string        // Optional: audience claim for tokens (default: journal-app)
	AccessTTL       time.Duration // Optional: access token lifetime (default: 168h)
	RefreshTTL      time.Duration // Optional: refresh token lifetime (default: 720h)
	RateLimitMax    int           // Optional: requests per window per client (default: 100)
	RateLimitWindow time.Duration // Optional: rate limit window (default: 15m)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./journal.db)
	PepperFile          string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

var (
	ErrMissingSecrets = errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must both be set")
	ErrSharedSecret   = errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must differ")
)

// LoadConfig reads configuration from the environment. The two signing
// secrets are required and must be distinct so an access token can never pass
// refresh verification or vice versa.
func LoadConfig() (Config, error) {
	cfg := Config{
		AccessSecret:        os.Getenv("AUTH_ACCESS_SECRET"),
		RefreshSecret:       os.Getenv("AUTH_REFRESH_SECRET"),
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "journal-auth"),
		Audience:            getEnvOrDefault("AUTH_AUDIENCE", "journal-app"),
		AccessTTL:           getEnvDurationOrDefault("AUTH_ACCESS_TTL", 7*24*time.Hour),
		RefreshTTL:          getEnvDurationOrDefault("AUTH_REFRESH_TTL", 30*24*time.Hour),
		RateLimitMax:        getEnvIntOrDefault("RATE_LIMIT_MAX", 100),
		RateLimitWindow:     getEnvDurationOrDefault("RATE_LIMIT_WINDOW", 15*time.Minute),
		DatabaseFile:        getEnvOrDefault("AUTH_DATABASE_FILE", "journal.db"),
		PepperFile:          getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return Config{}, ErrMissingSecrets
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return Config{}, ErrSharedSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
