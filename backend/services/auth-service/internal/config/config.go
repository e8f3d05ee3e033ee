package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "xpointconnect/backend/libs/config"
	libdb "xpointconnect/backend/libs/db"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"AUTH_HTTP_PORT" default:"8081"`
	} `yaml:"http"`
	Database struct {
		libdb.Config `yaml:",inline"`
		Migrate      bool `yaml:"migrate" env:"AUTH_POSTGRES_MIGRATE"`
	} `yaml:"database" env:"AUTH_POSTGRES"`
	JWT struct {
		Secret           string `yaml:"secret" env:"AUTH_JWT_SECRET" required:"true"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"AUTH_JWT_EXPIRES_MINUTES" default:"1440"`
	} `yaml:"jwt"`
	Password struct {
		BcryptCost int `yaml:"bcryptCost" env:"AUTH_BCRYPT_COST"`
	} `yaml:"password"`
}

// Load reads configuration using the shared config loader.
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
	if c.Password.BcryptCost != 0 && (c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31) {
		return errors.New("config: bcrypt cost must be between 4 and 31")
	}
	if c.JWT.ExpiresInMinutes < 0 {
		return errors.New("config: jwt expiry must not be negative")
	}
	return nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8081"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}
