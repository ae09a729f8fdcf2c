// Package config loads configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// DefaultCatalogURL is the catalog endpoint used when nothing else is configured.
const DefaultCatalogURL = "https://api.modrinth.com/v2"

// Config holds tool-wide settings. CLI flags override these values; the
// environment overrides the built-in defaults.
type Config struct {
	CatalogURL  string
	LogLevel    string
	LogFormat   string
	Channel     string
	Concurrency int
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		CatalogURL:  envOr("MODWARDEN_CATALOG_URL", DefaultCatalogURL),
		LogLevel:    envOr("MODWARDEN_LOG_LEVEL", "info"),
		LogFormat:   envOr("MODWARDEN_LOG_FORMAT", "console"),
		Channel:     envOr("MODWARDEN_CHANNEL", "release"),
		Concurrency: envInt("MODWARDEN_CONCURRENCY", 4),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
