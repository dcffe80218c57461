// Copyright (c) 2025-2026 Kani Stone Co.
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"STONECMS_DB_PATH" envDefault:"./data/stonecms.db"`
	SessionSecret string `env:"STONECMS_SESSION_SECRET,required"`
	ServerHost    string `env:"STONECMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"STONECMS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"STONECMS_ENV" envDefault:"development"`
	LogLevel      string `env:"STONECMS_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"STONECMS_UPLOADS_DIR" envDefault:"./uploads"`

	// Default content language for reads/writes that omit one.
	DefaultLanguage string `env:"STONECMS_DEFAULT_LANGUAGE" envDefault:"en"`

	// Content cache configuration
	RedisURL    string `env:"STONECMS_REDIS_URL"`                       // Optional Redis URL for the content cache
	CachePrefix string `env:"STONECMS_CACHE_PREFIX" envDefault:"scms:"` // Redis key prefix
	CacheTTL    int    `env:"STONECMS_CACHE_TTL" envDefault:"3600"`     // Default cache TTL in seconds

	// Storefront origins allowed to call the API with credentials.
	CORSOrigins []string `env:"STONECMS_CORS_ORIGINS" envSeparator:","`

	// Retention for audit events, in days. Older rows are pruned nightly.
	EventRetentionDays int `env:"STONECMS_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Seeding configuration
	DoSeed bool `env:"STONECMS_DO_SEED" envDefault:"false"`
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

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("STONECMS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("STONECMS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("STONECMS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
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
