package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config describes a Redis connection. Services embed it under their own prefix.
type Config struct {
	Addr         string        `yaml:"addr" required:"true" default:"localhost:6379"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"readTimeout" default:"3s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" default:"3s"`
}

// Options converts c into go-redis options.
func (c Config) Options() (*redis.Options, error) {
	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}
	if c.DB < 0 {
		return nil, errors.New("redis: db index must not be negative")
	}
	return &redis.Options{
		Addr:         addr,
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  orDefault(c.DialTimeout, 5*time.Second),
		ReadTimeout:  orDefault(c.ReadTimeout, 3*time.Second),
		WriteTimeout: orDefault(c.WriteTimeout, 3*time.Second),
	}, nil
}

// Connect returns a client that has answered PING.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// Probe returns a readiness check that pings client.
func Probe(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
