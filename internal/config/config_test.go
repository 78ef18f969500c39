package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CHAT_ADDR", ":7000")
	t.Setenv("CHAT_METRICS_ADDR", "")
	t.Setenv("CHAT_DEFAULT_ROOM", "  Hall ")
	t.Setenv("CHAT_DB_PATH", "")
	t.Setenv("CHAT_OUTBOUND_BUFFER", "64")
	t.Setenv("CHAT_IDLE_TIMEOUT", "5m")
	t.Setenv("CHAT_WRITE_TIMEOUT", "3")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "128")
	t.Setenv("CHAT_LOG_LEVEL", "DEBUG")

	cfg := FromEnv()
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "", cfg.MetricsAddr)
	assert.Equal(t, "Hall", cfg.DefaultRoom)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, 64, cfg.OutboundBuffer)
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 128, cfg.MaxMessageLength)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CHAT_OUTBOUND_BUFFER", "-3")
	t.Setenv("CHAT_WRITE_TIMEOUT", "0")
	t.Setenv("CHAT_IDLE_TIMEOUT", "soon")
	t.Setenv("CHAT_MAX_MESSAGE_LENGTH", "abc")

	cfg := FromEnv()
	def := Default()
	assert.Equal(t, def.OutboundBuffer, cfg.OutboundBuffer)
	assert.Equal(t, def.WriteTimeout, cfg.WriteTimeout)
	assert.Equal(t, def.IdleTimeout, cfg.IdleTimeout)
	assert.Equal(t, def.MaxMessageLength, cfg.MaxMessageLength)
}

func TestFromEnv_IdleTimeoutZeroAllowed(t *testing.T) {
	t.Setenv("CHAT_IDLE_TIMEOUT", "0")
	assert.Equal(t, time.Duration(0), FromEnv().IdleTimeout)
}

func TestApplyFlags_BlankDefaultRoomKeepsCurrent(t *testing.T) {
	t.Setenv("CHAT_DEFAULT_ROOM", "Hall")
	cfg := FromEnv()

	for _, room := range []string{"", "   "} {
		c := cfg
		c.ApplyFlags(Flags{Addr: c.Addr, DefaultRoom: room, LogLevel: c.LogLevel})
		assert.Equal(t, "Hall", c.DefaultRoom, "flag %q", room)
	}

	cfg.ApplyFlags(Flags{DefaultRoom: " Tech ", MetricsAddr: " :9100 ", DBPath: "", LogLevel: "WARN"})
	assert.Equal(t, "Tech", cfg.DefaultRoom)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, Default().Addr, cfg.Addr)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}
