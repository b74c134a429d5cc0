// Package config reads the kanban defaults from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr     string
	Driver   string
	Database string
	// Server, when set, points the CLI at a running kanban API instead of a local database.
	Server string
	Owner  string

	RedisURL  string
	DedupeTTL time.Duration

	PersistTimeout time.Duration
	ClientRetries  int

	LogLevel string
	Format   string
	Pretty   bool
}

func Load() Config {
	return Config{
		Addr:           getenv("KANBAN_ADDR", ":8787"),
		Driver:         getenv("KANBAN_DB_DRIVER", "sqlite"),
		Database:       getenv("KANBAN_DB", "kanban.sqlite"),
		Server:         getenv("KANBAN_SERVER", ""),
		Owner:          getenv("KANBAN_OWNER", "local"),
		RedisURL:       getenv("KANBAN_REDIS_URL", ""),
		DedupeTTL:      getenvDuration("KANBAN_DEDUPE_TTL", 24*time.Hour),
		PersistTimeout: getenvDuration("KANBAN_PERSIST_TIMEOUT", 15*time.Second),
		ClientRetries:  getenvInt("KANBAN_CLIENT_RETRIES", 2),
		LogLevel:       getenv("KANBAN_LOG_LEVEL", "info"),
		Format:         getenv("KANBAN_FORMAT", "json"),
		Pretty:         getenvBool("KANBAN_PRETTY", false),
	}
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getenvDuration accepts Go duration syntax ("15s") or a bare number of seconds.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
