package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "xpointconnect/backend/libs/config"
	libdb "xpointconnect/backend/libs/db"
	libredis "xpointconnect/backend/libs/redis"
)

// Config defines booking service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"BOOKING_HTTP_PORT" default:"8082"`
	} `yaml:"http"`
	Database struct {
		libdb.Config `yaml:",inline"`
		Migrate      bool `yaml:"migrate" env:"BOOKING_POSTGRES_MIGRATE"`
	} `yaml:"database" env:"BOOKING_POSTGRES"`
	Redis struct {
		libredis.Config `yaml:",inline"`
		CheckInTTL      time.Duration `yaml:"checkInTTL" env:"BOOKING_REDIS_CHECKIN_TTL" default:"12h"`
	} `yaml:"redis" env:"BOOKING_REDIS"`
	Booking struct {
		EnforceSlotCapacity bool `yaml:"enforceSlotCapacity" env:"BOOKING_ENFORCE_SLOT_CAPACITY"`
	} `yaml:"booking"`
	Dashboard struct {
		DefaultLatitude  float64 `yaml:"defaultLatitude" env:"BOOKING_DASHBOARD_LATITUDE" default:"6.9271"`
		DefaultLongitude float64 `yaml:"defaultLongitude" env:"BOOKING_DASHBOARD_LONGITUDE" default:"79.8612"`
		RadiusKm         float64 `yaml:"radiusKm" env:"BOOKING_DASHBOARD_RADIUS_KM" default:"10"`
	} `yaml:"dashboard"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Redis.DB < 0 {
		return errors.New("config: redis db index must not be negative")
	}
	if c.Dashboard.RadiusKm <= 0 {
		return errors.New("config: dashboard radius must be positive")
	}
	if c.Dashboard.DefaultLatitude < -90 || c.Dashboard.DefaultLatitude > 90 ||
		c.Dashboard.DefaultLongitude < -180 || c.Dashboard.DefaultLongitude > 180 {
		return errors.New("config: dashboard default coordinate out of range")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8082"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CheckInTTL returns how long a check-in stays cached.
func (c *Config) CheckInTTL() time.Duration {
	if c.Redis.CheckInTTL <= 0 {
		return 12 * time.Hour
	}
	return c.Redis.CheckInTTL
}
