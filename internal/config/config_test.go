package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment.Name)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 12, cfg.BcryptSaltRounds)
	assert.Equal(t, 168*time.Hour, cfg.Auth.AccessExpiresIn)
	assert.Equal(t, 8760*time.Hour, cfg.Auth.RefreshExpiresIn)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("JWT_ACCESS_EXPIRES_IN", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessExpiresIn)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:      Environment{Name: EnvTest},
			Database:         Database{Driver: "sqlite", URL: "file::memory:"},
			Auth:             Auth{AccessExpiresIn: time.Hour, RefreshExpiresIn: time.Hour},
			RateLimit:        RateLimit{Requests: 1, Window: time.Second},
			BcryptSaltRounds: 10,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown environment", func(c *Config) { c.Environment.Name = "staging" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongodb" }},
		{"bcrypt cost too low", func(c *Config) { c.BcryptSaltRounds = 2 }},
		{"bcrypt cost too high", func(c *Config) { c.BcryptSaltRounds = 40 }},
		{"zero access expiry", func(c *Config) { c.Auth.AccessExpiresIn = 0 }},
		{"zero rate limit", func(c *Config) { c.RateLimit.Requests = 0 }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
