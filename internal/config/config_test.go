package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DASHBOARD_RECENT_LIMIT", "")

	cfg := Load()
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 10, cfg.DashboardRecentLimit)
	assert.Equal(t, 20, cfg.ReportRecentAccessLimit)
	assert.Equal(t, "X-Forwarded-For", cfg.ForwardedForHeader)
	assert.Equal(t, 8*time.Hour, cfg.JWTExpiration)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("LOGIN_RATE_LIMIT", "not-a-number")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("S3_PREFIX", "/audit/reports/")
	t.Setenv("TRUSTED_PROXY_HEADER", "X-Real-Forwarded-For")

	cfg := Load()
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 10, cfg.LoginRateLimit, "invalid ints fall back to the default")
	assert.True(t, cfg.S3UsePathStyle)
	assert.Equal(t, "audit/reports", cfg.S3Prefix)
	assert.Equal(t, "X-Real-Forwarded-For", cfg.ForwardedForHeader)
}

func TestValidateWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := &Config{
		JWTSecret:              defaultJWTSecret,
		BootstrapAdminUsername: "admin",
		ForwardedForHeader:     "X-Forwarded-For",
	}

	cfg.Validate(zap.New(core))

	assert.Equal(t, 1, logs.FilterMessage("JWT_SECRET is default, change in production").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("bootstrap skipped").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("report archival disabled").Len())
}
