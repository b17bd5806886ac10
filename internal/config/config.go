// Package config reads process settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"wayfinder/core-go/internal/maperr"
	"wayfinder/core-go/internal/search"
)

type Config struct {
	HTTPAddr    string
	LogLevel    string
	LogFormat   string
	DatabaseURL string
	// Migrate applies the embedded schema on start when a database is configured.
	Migrate              bool
	RedisURL             string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SeedFile             string
	SeedOnStart          bool
	SearchDefaultLimit   int
}

// Load reads the process environment.
func Load() (Config, error) {
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config from any key lookup, falling back to defaults for
// empty values.
func FromLookup(getenv func(string) string) (Config, error) {
	envOr := func(key, fallback string) string {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return fallback
		}
		return v
	}

	cfg := Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8081"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "json"),
		DatabaseURL: envOr("DATABASE_URL", ""),
		RedisURL:    envOr("REDIS_URL", ""),
		SeedFile:    envOr("SEED_FILE", ""),
	}

	var err error
	if cfg.Migrate, err = parseBool("DATABASE_MIGRATE", envOr("DATABASE_MIGRATE", "false")); err != nil {
		return Config{}, err
	}
	if cfg.SeedOnStart, err = parseBool("SEED_ON_START", envOr("SEED_ON_START", "false")); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = parsePositiveDuration("SESSION_TTL", envOr("SESSION_TTL", "30m")); err != nil {
		return Config{}, err
	}
	if cfg.SessionSweepInterval, err = parsePositiveDuration("SESSION_SWEEP_INTERVAL", envOr("SESSION_SWEEP_INTERVAL", "1m")); err != nil {
		return Config{}, err
	}

	limit, err := strconv.Atoi(envOr("SEARCH_DEFAULT_LIMIT", strconv.Itoa(search.DefaultLimit)))
	if err != nil || limit <= 0 || limit > search.MaxLimit {
		return Config{}, maperr.New(maperr.CodeValidation,
			"SEARCH_DEFAULT_LIMIT must be an integer between 1 and %d", search.MaxLimit)
	}
	cfg.SearchDefaultLimit = limit

	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, maperr.New(maperr.CodeValidation, "LOG_FORMAT must be json or console, got %q", cfg.LogFormat)
	}
	return cfg, nil
}

func parseBool(key, raw string) (bool, error) {
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, maperr.New(maperr.CodeValidation, "%s must be a boolean, got %q", key, raw)
	}
	return v, nil
}

func parsePositiveDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, maperr.New(maperr.CodeValidation, "%s must be a positive duration, got %q", key, raw)
	}
	return d, nil
}
