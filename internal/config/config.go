// Package config loads runtime settings from a .env file and the environment,
// falling back to defaults for anything unset or malformed.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the chat server settings.
type Config struct {
	Addr             string
	MetricsAddr      string
	DefaultRoom      string
	DBPath           string
	OutboundBuffer   int
	IdleTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxMessageLength int
	PersistTimeout   time.Duration
	ShutdownTimeout  time.Duration
	LogLevel         string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:             ":8000",
		MetricsAddr:      ":9090",
		DefaultRoom:      "Lobby",
		DBPath:           "chat.db",
		OutboundBuffer:   256,
		IdleTimeout:      0,
		WriteTimeout:     10 * time.Second,
		MaxMessageLength: 512,
		PersistTimeout:   5 * time.Second,
		ShutdownTimeout:  30 * time.Second,
		LogLevel:         "info",
	}
}

// Load reads .env (if present) and then the CHAT_* environment variables.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() Config {
	cfg := Default()

	// Addresses may be set to empty on purpose, so presence is what counts.
	if v, ok := os.LookupEnv("CHAT_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv("CHAT_METRICS_ADDR"); ok {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv("CHAT_DEFAULT_ROOM")); v != "" {
		cfg.DefaultRoom = v
	}
	if v, ok := os.LookupEnv("CHAT_DB_PATH"); ok {
		cfg.DBPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("CHAT_OUTBOUND_BUFFER"); v != "" {
		cfg.OutboundBuffer = parseIntValue(v, cfg.OutboundBuffer)
	}
	if v := os.Getenv("CHAT_IDLE_TIMEOUT"); v != "" {
		cfg.IdleTimeout = parseDuration(v, cfg.IdleTimeout, true)
	}
	if v := os.Getenv("CHAT_WRITE_TIMEOUT"); v != "" {
		cfg.WriteTimeout = parseDuration(v, cfg.WriteTimeout, false)
	}
	if v := os.Getenv("CHAT_MAX_MESSAGE_LENGTH"); v != "" {
		cfg.MaxMessageLength = parseIntValue(v, cfg.MaxMessageLength)
	}
	if v := os.Getenv("CHAT_PERSIST_TIMEOUT"); v != "" {
		cfg.PersistTimeout = parseDuration(v, cfg.PersistTimeout, false)
	}
	if v := os.Getenv("CHAT_SHUTDOWN_TIMEOUT"); v != "" {
		cfg.ShutdownTimeout = parseDuration(v, cfg.ShutdownTimeout, false)
	}
	if v := strings.TrimSpace(os.Getenv("CHAT_LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	return cfg
}

// Flags carries command-line overrides. Empty Addr, DefaultRoom and LogLevel
// keep the current value; MetricsAddr and DBPath may be emptied to disable.
type Flags struct {
	Addr        string
	MetricsAddr string
	DefaultRoom string
	DBPath      string
	LogLevel    string
}

// ApplyFlags overlays f with the same trimming FromEnv applies.
func (c *Config) ApplyFlags(f Flags) {
	if v := strings.TrimSpace(f.Addr); v != "" {
		c.Addr = v
	}
	c.MetricsAddr = strings.TrimSpace(f.MetricsAddr)
	if v := strings.TrimSpace(f.DefaultRoom); v != "" {
		c.DefaultRoom = v
	}
	c.DBPath = strings.TrimSpace(f.DBPath)
	if v := strings.TrimSpace(f.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// SlogLevel maps LogLevel onto slog, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

// parseDuration accepts Go durations ("90s") or bare seconds ("90").
func parseDuration(value string, defaultValue time.Duration, allowZero bool) time.Duration {
	value = strings.TrimSpace(value)
	d, err := time.ParseDuration(value)
	if err != nil {
		secs, convErr := strconv.Atoi(value)
		if convErr != nil {
			return defaultValue
		}
		d = time.Duration(secs) * time.Second
	}
	if d < 0 || (d == 0 && !allowZero) {
		return defaultValue
	}
	return d
}
