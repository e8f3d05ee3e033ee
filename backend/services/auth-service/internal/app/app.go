package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	libdb "xpointconnect/backend/libs/db"
	"xpointconnect/backend/libs/httpx"
	"xpointconnect/backend/libs/password"
	appconfig "xpointconnect/backend/services/auth-service/internal/config"
	httpserver "xpointconnect/backend/services/auth-service/internal/http"
	"xpointconnect/backend/services/auth-service/internal/http/handlers"
	"xpointconnect/backend/services/auth-service/internal/repository"
	"xpointconnect/backend/services/auth-service/internal/service"
)

// App wires dependencies for the auth service.
type App struct {
	server *httpx.Server
	db     *sqlx.DB
	logger *zap.Logger
}

// New builds application graph.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	db, err := libdb.Open(ctx, cfg.Database.Config)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Migrate {
		if err := libdb.Migrate(ctx, db.DB, "up"); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := httpx.NewMetrics(registry)
	authMetrics := service.NewMetrics(registry)

	hasher := password.NewBcryptHasher(cfg.Password.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	userService := service.NewUserService(repository.NewUserRepository(db), hasher, tokens, authMetrics, logger)
	ownerService := service.NewOwnerService(repository.NewOwnerRepository(db), hasher, tokens, authMetrics, logger)

	router := httpserver.NewRouter(httpserver.Routes{
		Users:   handlers.NewUserHandler(userService, logger),
		Owners:  handlers.NewOwnerHandler(ownerService, logger),
		Health:  httpx.HealthHandler(2*time.Second, httpx.Check{Name: "postgres", Probe: libdb.Probe(db)}),
		Metrics: httpMetrics.Handler(),
	})
	server := httpx.NewServer(cfg.HTTPAddress(), router, logger,
		httpx.RecoveryMiddleware(logger),
		httpx.LoggingMiddleware(logger),
		auth.FromHeadersMiddleware,
		httpMetrics.Middleware,
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
