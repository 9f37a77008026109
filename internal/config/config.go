// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the client configuration loaded from environment variables.
type Config struct {
	APIURL   string `env:"CAUSECONNECT_API_URL" envDefault:"http://localhost:4000"`
	DBPath   string `env:"CAUSECONNECT_DB_PATH" envDefault:"./data/causeconnect.db"`
	Env      string `env:"CAUSECONNECT_ENV" envDefault:"development"`
	LogLevel string `env:"CAUSECONNECT_LOG_LEVEL" envDefault:"info"`

	// Transport
	RequestTimeout time.Duration `env:"CAUSECONNECT_REQUEST_TIMEOUT" envDefault:"30s"`
	RateLimit      float64       `env:"CAUSECONNECT_RATE_LIMIT" envDefault:"0"` // Requests per second, 0 = unlimited

	// Search-as-you-type quiet period
	SuggestDelay time.Duration `env:"CAUSECONNECT_SUGGEST_DELAY" envDefault:"200ms"`

	// Event detail cache
	RedisURL    string        `env:"CAUSECONNECT_REDIS_URL"`                                // Optional Redis URL
	CachePrefix string        `env:"CAUSECONNECT_CACHE_PREFIX" envDefault:"causeconnect:"` // Redis key prefix
	CacheTTL    time.Duration `env:"CAUSECONNECT_CACHE_TTL" envDefault:"60s"`
	CacheMax    int           `env:"CAUSECONNECT_CACHE_MAX_ENTRIES" envDefault:"500"` // Memory backend bound

	// Zone used to anchor host event times to a calendar day
	Timezone string `env:"CAUSECONNECT_TIMEZONE" envDefault:"Local"`
}

// IsDevelopment returns true if the client is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Location returns the configured time zone. Load has already verified it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
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

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("CAUSECONNECT_API_URL must be an absolute http(s) URL, got %q", cfg.APIURL)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("CAUSECONNECT_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.SuggestDelay <= 0 {
		return nil, fmt.Errorf("CAUSECONNECT_SUGGEST_DELAY must be positive, got %s", cfg.SuggestDelay)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CAUSECONNECT_CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("CAUSECONNECT_RATE_LIMIT must not be negative, got %v", cfg.RateLimit)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("CAUSECONNECT_TIMEZONE: %w", err)
	}

	return cfg, nil
}
