// Package config loads runtime settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort     = "8080"
	defaultLogLevel = "info"
)

// Config holds all runtime configuration values.
type Config struct {
	// Port is the TCP port the HTTP server binds to.
	Port string
	// Testing switches the app into test mode: handler panics propagate to the
	// caller instead of being rendered as 500 responses.
	Testing bool
	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads configuration from the process environment. Values from a .env
// file are applied first but never override variables that are already set.
func Load() (Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit dotenv paths. Missing files are skipped.
func LoadFiles(paths ...string) (Config, error) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}

	cfg := Config{
		Port:     envOr("PORT", defaultPort),
		LogLevel: strings.ToLower(envOr("LOG_LEVEL", defaultLogLevel)),
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q: must be an integer between 1 and 65535", cfg.Port)
	}

	if raw, ok := os.LookupEnv("APP_TESTING"); ok && raw != "" {
		cfg.Testing, err = strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid APP_TESTING %q: %w", raw, err)
		}
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: want debug, info, warn or error", cfg.LogLevel)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
