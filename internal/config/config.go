// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Search behavior defaults.
const (
	DefaultPageSizeValue   = 256
	DefaultMaxResultsValue = 1000
)

// Config holds all configuration for the Everything client and MCP server.
type Config struct {
	WindowClass    string        // EVERYTHING_WINDOW_CLASS, default "EVERYTHING_TASKBAR_NOTIFICATION"
	ReplyKind      uint32        // EVERYTHING_REPLY_KIND, default 0x804E
	PageSize       int           // SEARCH_PAGE_SIZE, default 256
	MaxResults     int           // SEARCH_MAX_RESULTS, default 1000
	PageTimeout    time.Duration // SEARCH_PAGE_TIMEOUT_MS, default 5000ms (5s per page)
	HandleCacheTTL time.Duration // HANDLE_CACHE_TTL_MS, default 5000ms
	PumpIdleSleep  time.Duration // PUMP_IDLE_SLEEP_MS, default 5ms

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		WindowClass:    getEnvString("EVERYTHING_WINDOW_CLASS", "EVERYTHING_TASKBAR_NOTIFICATION"),
		ReplyKind:      uint32(getEnvInt("EVERYTHING_REPLY_KIND", 0x804E)),
		PageSize:       getEnvInt("SEARCH_PAGE_SIZE", DefaultPageSizeValue),
		MaxResults:     getEnvInt("SEARCH_MAX_RESULTS", DefaultMaxResultsValue),
		PageTimeout:    getEnvDurationMs("SEARCH_PAGE_TIMEOUT_MS", 5000),
		HandleCacheTTL: getEnvDurationMs("HANDLE_CACHE_TTL_MS", 5000),
		PumpIdleSleep:  getEnvDurationMs("PUMP_IDLE_SLEEP_MS", 5),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
