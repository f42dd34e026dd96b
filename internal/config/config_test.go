package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8001", cfg.App.Addr())
	assert.Equal(t, 1440, cfg.Auth.AccessTokenTTLMinutes)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MAIL_WORKERS", "not-a-number")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("MUTATION_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 2, cfg.Mail.Workers)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 3*time.Second, cfg.App.MutationTimeout())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.Error(t, err)
}

func TestMailEnabled(t *testing.T) {
	assert.False(t, MailConfig{SMTPHost: "smtp.example.com"}.Enabled())
	assert.True(t, MailConfig{SMTPHost: "smtp.example.com", Password: "secret"}.Enabled())
}
