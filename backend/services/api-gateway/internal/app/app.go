package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/services/api-gateway/internal/clients"
	"xpointconnect/backend/services/api-gateway/internal/config"
	httpserver "xpointconnect/backend/services/api-gateway/internal/http"
	"xpointconnect/backend/services/api-gateway/internal/http/handlers"
	"xpointconnect/backend/services/api-gateway/internal/http/middleware"
)

// App wires API gateway dependencies.
type App struct {
	server *httpx.Server
	logger *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())
	tokens := auth.NewTokenService(cfg.JWT.Secret, 0)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := httpx.NewMetrics(registry)

	router, err := httpserver.NewRouter(httpserver.RouterDeps{
		Routes: httpserver.DefaultRoutes(),
		Upstreams: map[string]handlers.Forwarder{
			httpserver.UpstreamAuth:    clients.NewUpstream(httpserver.UpstreamAuth, cfg.Services.AuthURL, httpClient),
			httpserver.UpstreamBooking: clients.NewUpstream(httpserver.UpstreamBooking, cfg.Services.BookingURL, httpClient),
		},
		Cache:   middleware.NewResponseCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval),
		Health:  httpx.HealthHandler(0),
		Metrics: httpMetrics.Handler(),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	limiter := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		cfg.RateLimit.IdleTTL,
		cfg.RateLimit.TrustForwardedFor,
	)
	server := httpx.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		httpx.RecoveryMiddleware(logger),
		httpx.LoggingMiddleware(logger),
		limiter.Middleware,
		middleware.Authenticate(tokens),
		httpMetrics.Middleware,
	)

	return &App{
		server: server,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources (none yet).
func (a *App) Close() {}
