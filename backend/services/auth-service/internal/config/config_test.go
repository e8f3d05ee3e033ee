package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libconfig "xpointconnect/backend/libs/config"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AUTH_POSTGRES_DSN", "postgres://localhost/xpoint")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_HTTP_PORT", "9091")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9091", cfg.HTTPAddress())
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration())
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Zero(t, cfg.Password.BcryptCost)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AUTH_POSTGRES_DSN", "postgres://localhost/xpoint")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, libconfig.ErrRequired)
	assert.ErrorContains(t, err, "AUTH_JWT_SECRET")
}

func TestValidateBcryptCost(t *testing.T) {
	cfg := &Config{}
	cfg.Database.DSN = "postgres://localhost/xpoint"
	cfg.JWT.Secret = "s3cret"
	cfg.Password.BcryptCost = 2
	assert.Error(t, cfg.validate())

	cfg.Password.BcryptCost = 12
	assert.NoError(t, cfg.validate())
}
