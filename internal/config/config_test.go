package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("EMAIL_USER", "")
	t.Setenv("EMAIL_PASS", "")
	t.Setenv("CHAT_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 587, cfg.EmailPort)
	assert.Equal(t, 30*time.Second, cfg.ChatTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.Empty(t, cfg.EmailUser)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("EMAIL_PORT", "465")
	t.Setenv("EMAIL_USER", "mailer@example.com")
	t.Setenv("EMAIL_PASS", "secret")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("SIDE_EFFECT_TIMEOUT", "5s")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 465, cfg.EmailPort)
	assert.Equal(t, "mailer@example.com", cfg.EmailUser)
	assert.Equal(t, "secret", cfg.EmailPassword)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, 5*time.Second, cfg.SideEffectTimeout)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("EMAIL_PORT", "not-a-port")
	t.Setenv("CHAT_TIMEOUT", "-1s")

	cfg := Load()

	assert.Equal(t, 587, cfg.EmailPort)
	assert.Equal(t, 30*time.Second, cfg.ChatTimeout)
}
