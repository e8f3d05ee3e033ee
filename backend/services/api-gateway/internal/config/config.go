package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	libconfig "xpointconnect/backend/libs/config"
)

// Config defines gateway configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"API_GATEWAY_HTTP_PORT" default:"8080"`
	} `yaml:"http"`
	JWT struct {
		Secret string `yaml:"secret" env:"API_GATEWAY_JWT_SECRET" required:"true"`
	} `yaml:"jwt"`
	Services struct {
		AuthURL    string `yaml:"authUrl" env:"AUTH_SERVICE_URL" default:"http://localhost:8081" required:"true"`
		BookingURL string `yaml:"bookingUrl" env:"BOOKING_SERVICE_URL" default:"http://localhost:8082" required:"true"`
	} `yaml:"services"`
	HTTPClient struct {
		TimeoutSeconds int `yaml:"timeoutSeconds" env:"API_GATEWAY_HTTP_TIMEOUT" default:"5"`
	} `yaml:"httpClient"`
	RateLimit struct {
		RequestsPerSecond float64       `yaml:"requestsPerSecond" env:"API_GATEWAY_RATE_LIMIT_RPS" default:"10"`
		Burst             int           `yaml:"burst" env:"API_GATEWAY_RATE_LIMIT_BURST" default:"20"`
		IdleTTL           time.Duration `yaml:"idleTTL" env:"API_GATEWAY_RATE_LIMIT_IDLE_TTL" default:"10m"`
		TrustForwardedFor bool          `yaml:"trustForwardedFor" env:"API_GATEWAY_TRUST_FORWARDED_FOR"`
	} `yaml:"rateLimit"`
	Cache struct {
		TTL             time.Duration `yaml:"ttl" env:"API_GATEWAY_CACHE_TTL" default:"30s"`
		CleanupInterval time.Duration `yaml:"cleanupInterval" env:"API_GATEWAY_CACHE_CLEANUP" default:"1m"`
	} `yaml:"cache"`
}

// Load configuration via shared helper.
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
	for name, raw := range map[string]string{"auth": c.Services.AuthURL, "booking": c.Services.BookingURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: %s service url %q is not absolute", name, raw)
		}
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("config: rate limit must be positive")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// HTTPTimeout returns http client timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPClient.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.HTTPClient.TimeoutSeconds) * time.Second
}
