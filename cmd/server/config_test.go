package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("CHANNEL_SECRET", "secret")
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("QUOTA_LIMIT", "")
	t.Setenv("REPORTING_TZ", "")

	cfg := configFromEnv()
	assert.Equal(":2137", cfg.listenAddr)
	assert.Equal(500, cfg.quotaLimit)
	assert.Equal(30*24*time.Hour, cfg.quotaInterval)
	assert.Equal("memory", cfg.quotaBackend)
	assert.Equal(time.UTC, cfg.location)
	assert.Equal(time.Hour, cfg.reconcileInterval)
	assert.Equal("secret", cfg.channelSecret)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("CHANNEL_SECRET", "secret")
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("QUOTA_LIMIT", "20")
	t.Setenv("QUOTA_INTERVAL", "24h")
	t.Setenv("QUOTA_BACKEND", "buntdb")
	t.Setenv("REPORTING_TZ", "Asia/Tokyo")
	t.Setenv("RECONCILE_INTERVAL", "0s")

	cfg := configFromEnv()
	assert.Equal(20, cfg.quotaLimit)
	assert.Equal(24*time.Hour, cfg.quotaInterval)
	assert.Equal("buntdb", cfg.quotaBackend)
	assert.Equal("Asia/Tokyo", cfg.location.String())
	assert.Equal(time.Duration(0), cfg.reconcileInterval)
}
