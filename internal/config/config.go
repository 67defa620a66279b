// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Local session backends understood by aromapurectl.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"AROMAPURE_DB_PATH" envDefault:"./data/aromapure.db"`
	SessionSecret string `env:"AROMAPURE_SESSION_SECRET,required"`
	ServerHost    string `env:"AROMAPURE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"AROMAPURE_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"AROMAPURE_ENV" envDefault:"development"`
	LogLevel      string `env:"AROMAPURE_LOG_LEVEL" envDefault:"info"`

	// Session cookie lifetime. The persisted record itself carries no expiry.
	SessionLifetime time.Duration `env:"AROMAPURE_SESSION_LIFETIME" envDefault:"720h"`

	// Demo credential accepted by the static verifier
	DemoUsername string `env:"AROMAPURE_DEMO_USERNAME" envDefault:"Yash"`
	DemoPassword string `env:"AROMAPURE_DEMO_PASSWORD" envDefault:"123"`

	// Device-local session slot used by aromapurectl
	LocalSessionBackend string `env:"AROMAPURE_LOCAL_SESSION_BACKEND" envDefault:"sqlite"`
	LocalSessionDir     string `env:"AROMAPURE_LOCAL_SESSION_DIR" envDefault:"./data/sessions"`

	// Cache configuration
	RedisURL     string `env:"AROMAPURE_REDIS_URL"`                            // Optional Redis URL for caching and local sessions
	CachePrefix  string `env:"AROMAPURE_CACHE_PREFIX" envDefault:"aromapure:"` // Redis key prefix
	CacheTTL     int    `env:"AROMAPURE_CACHE_TTL" envDefault:"300"`           // Default cache TTL in seconds
	CacheMaxSize int    `env:"AROMAPURE_CACHE_MAX_SIZE" envDefault:"1000"`     // Max memory cache entries

	// Login protection
	LoginRateLimit   float64       `env:"AROMAPURE_LOGIN_RATE_LIMIT" envDefault:"0.5"`
	LoginBurst       int           `env:"AROMAPURE_LOGIN_BURST" envDefault:"5"`
	LoginMaxAttempts int           `env:"AROMAPURE_LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockout     time.Duration `env:"AROMAPURE_LOGIN_LOCKOUT" envDefault:"15m"`

	// Event log retention in days (0 disables pruning)
	EventRetentionDays int `env:"AROMAPURE_EVENT_RETENTION_DAYS" envDefault:"30"`

	// Seeding configuration
	DoSeed bool `env:"AROMAPURE_DO_SEED" envDefault:"true"` // Seed demo fleet data into an empty database
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("AROMAPURE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("AROMAPURE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return errors.New("AROMAPURE_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if c.DemoUsername == "" || c.DemoPassword == "" {
		return errors.New("AROMAPURE_DEMO_USERNAME and AROMAPURE_DEMO_PASSWORD must not be empty")
	}

	if err := validateLocalBackend(c.LocalSessionBackend, c.RedisURL); err != nil {
		return err
	}

	if c.SessionLifetime <= 0 {
		return errors.New("AROMAPURE_SESSION_LIFETIME must be positive")
	}

	return nil
}

func validateLocalBackend(backend, redisURL string) error {
	switch backend {
	case BackendSQLite, BackendFile, BackendMemory:
	case BackendRedis:
		if redisURL == "" {
			return errors.New("AROMAPURE_LOCAL_SESSION_BACKEND=redis requires AROMAPURE_REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown AROMAPURE_LOCAL_SESSION_BACKEND %q", backend)
	}
	return nil
}

// LocalConfig is the subset of the configuration used by aromapurectl.
// It does not need the session secret.
type LocalConfig struct {
	DBPath              string `env:"AROMAPURE_DB_PATH" envDefault:"./data/aromapure.db"`
	LogLevel            string `env:"AROMAPURE_LOG_LEVEL" envDefault:"warn"`
	DemoUsername        string `env:"AROMAPURE_DEMO_USERNAME" envDefault:"Yash"`
	DemoPassword        string `env:"AROMAPURE_DEMO_PASSWORD" envDefault:"123"`
	LocalSessionBackend string `env:"AROMAPURE_LOCAL_SESSION_BACKEND" envDefault:"sqlite"`
	LocalSessionDir     string `env:"AROMAPURE_LOCAL_SESSION_DIR" envDefault:"./data/sessions"`
	RedisURL            string `env:"AROMAPURE_REDIS_URL"`
	CachePrefix         string `env:"AROMAPURE_CACHE_PREFIX" envDefault:"aromapure:"`
}

// LoadLocal parses the environment into a LocalConfig.
func LoadLocal() (*LocalConfig, error) {
	cfg := &LocalConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DemoUsername == "" || cfg.DemoPassword == "" {
		return nil, errors.New("AROMAPURE_DEMO_USERNAME and AROMAPURE_DEMO_PASSWORD must not be empty")
	}
	if err := validateLocalBackend(cfg.LocalSessionBackend, cfg.RedisURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level.
func (c LocalConfig) SlogLevel() slog.Level {
	return Config{LogLevel: c.LogLevel}.SlogLevel()
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
