package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ALLOWED_EMAILS", " a@example.com, ,b@example.com")
	t.Setenv("CORS_ORIGINS", "https://app.example.com")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.AllowedEmails)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.IsProduction())
}

func TestSessionTTLFallback(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	assert.Equal(t, 24*time.Hour, Load().SessionTTL)
}

func TestNewLoggerLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.NotNil(t, cfg.NewLogger())

	cfg = &Config{LogLevel: "loud"}
	assert.NotNil(t, cfg.NewLogger())
}
