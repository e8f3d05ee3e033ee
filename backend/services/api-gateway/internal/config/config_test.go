package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libconfig "xpointconnect/backend/libs/config"
)

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jwt:
  secret: from-file
services:
  bookingUrl: http://booking:8082
rateLimit:
  burst: 5
cache:
  ttl: 10s
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_GATEWAY_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_GATEWAY_HTTP_TIMEOUT", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "http://booking:8082", cfg.Services.BookingURL)
	assert.Equal(t, "http://localhost:8081", cfg.Services.AuthURL)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.Equal(t, 10*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, ":8080", cfg.HTTPAddress())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_GATEWAY_JWT_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, libconfig.ErrRequired)
	assert.ErrorContains(t, err, "API_GATEWAY_JWT_SECRET")
}

func TestLoadRejectsRelativeServiceURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_GATEWAY_JWT_SECRET", "s3cret")
	t.Setenv("BOOKING_SERVICE_URL", "booking:8082")

	_, err := Load()
	assert.ErrorContains(t, err, "booking service url")
}
