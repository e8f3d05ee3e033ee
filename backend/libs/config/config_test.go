package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Pool struct {
	DSN          string        `yaml:"dsn" required:"true"`
	MaxOpenConns int           `yaml:"maxOpenConns" default:"25"`
	PingTimeout  time.Duration `yaml:"pingTimeout" default:"5s"`
}

type testConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"TEST_HTTP_PORT" default:"8080"`
	} `yaml:"http"`
	Database struct {
		Pool    `yaml:",inline"`
		Migrate bool `yaml:"migrate"`
	} `yaml:"database" env:"TEST_POSTGRES"`
	Booking struct {
		StrictSlots bool          `yaml:"strictSlots"`
		Timeout     time.Duration `yaml:"timeout"`
		Radius      float64       `yaml:"radius" default:"10"`
	} `yaml:"booking"`
	Origins []string `yaml:"origins" env:"TEST_ORIGINS"`
}

func TestLoadFileLayersDefaultsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9000"
database:
  dsn: postgres://file/xpoint
  maxOpenConns: 10
booking:
  strictSlots: false
  radius: 5.5
`), 0o600))

	t.Setenv("TEST_HTTP_PORT", "9100")
	t.Setenv("TEST_POSTGRES_PING_TIMEOUT", "2s")
	t.Setenv("BOOKING_STRICT_SLOTS", "true")
	t.Setenv("BOOKING_TIMEOUT", "3s")
	t.Setenv("TEST_ORIGINS", "a.example, b.example,,")

	var cfg testConfig
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, "postgres://file/xpoint", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 2*time.Second, cfg.Database.PingTimeout)
	assert.True(t, cfg.Booking.StrictSlots)
	assert.Equal(t, 3*time.Second, cfg.Booking.Timeout)
	assert.InDelta(t, 5.5, cfg.Booking.Radius, 1e-9)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.Origins)
}

func TestLoadFileDefaultsWithoutFile(t *testing.T) {
	t.Setenv("TEST_POSTGRES_DSN", "postgres://env/xpoint")

	var cfg testConfig
	require.NoError(t, LoadFile("", &cfg))

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Database.PingTimeout)
	assert.InDelta(t, 10, cfg.Booking.Radius, 1e-9)
}

func TestLoadFileRequiredField(t *testing.T) {
	t.Setenv("TEST_POSTGRES_DSN", "   ")

	var cfg testConfig
	err := LoadFile("", &cfg)
	require.ErrorIs(t, err, ErrRequired)
	assert.ErrorContains(t, err, "TEST_POSTGRES_DSN")
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	var cfg testConfig
	assert.Error(t, LoadFile("", nil))
	assert.Error(t, LoadFile("", cfg))

	t.Setenv("TEST_POSTGRES_DSN", "postgres://env/xpoint")
	t.Setenv("BOOKING_TIMEOUT", "soon")
	assert.ErrorContains(t, LoadFile("", &cfg), "BOOKING_TIMEOUT")
}

func TestLoadFileMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	assert.ErrorContains(t, err, "config: read file")
}

func TestSnake(t *testing.T) {
	cases := map[string]string{
		"DSN":          "DSN",
		"MaxOpenConns": "MAX_OPEN_CONNS",
		"HTTPClient":   "HTTP_CLIENT",
		"RadiusKm":     "RADIUS_KM",
		"check-in":     "CHECK_IN",
	}
	for in, want := range cases {
		assert.Equal(t, want, snake(in), in)
	}
}
