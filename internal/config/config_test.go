package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsFromEnvironment(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("PG_HOST", "db.internal")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "postgres://postgres:@db.internal:5432/ace?sslmode=disable", cfg.Postgres.DSN())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.Policy.RateLimitFailOpen)
	assert.Equal(t, AuditBestEffort, cfg.Policy.Audit)
	assert.Equal(t, time.Hour, cfg.Policy.SubmissionRateWindow)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, CacheMemory, cfg.Cache)
}

func TestLoad_ProductionSecuresCookie(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_FAIL_OPEN", "false")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.True(t, cfg.Session.Secure)
	assert.False(t, cfg.Policy.RateLimitFailOpen)
}

func TestLoad_Rejects(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "")
		_, err := Load(New())
		assert.Error(t, err)
	})

	t.Run("unknown audit policy", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "s3cret")
		t.Setenv("AUDIT_POLICY", "sometimes")
		_, err := Load(New())
		assert.ErrorContains(t, err, "AUDIT_POLICY")
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "s3cret")
		t.Setenv("CACHE_BACKEND", "memcached")
		_, err := Load(New())
		assert.ErrorContains(t, err, "CACHE_BACKEND")
	})
}
