package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"xpointconnect/backend/libs/auth"
	libdb "xpointconnect/backend/libs/db"
	"xpointconnect/backend/libs/httpx"
	libredis "xpointconnect/backend/libs/redis"
	"xpointconnect/backend/services/booking-service/internal/config"
	httpserver "xpointconnect/backend/services/booking-service/internal/http"
	"xpointconnect/backend/services/booking-service/internal/http/handlers"
	redisstore "xpointconnect/backend/services/booking-service/internal/redis"
	"xpointconnect/backend/services/booking-service/internal/repository"
	"xpointconnect/backend/services/booking-service/internal/service"
)

// App wires booking-service dependencies.
type App struct {
	server      *httpx.Server
	db          *sqlx.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
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

	redisClient, err := libredis.Connect(ctx, cfg.Redis.Config)
	if err != nil {
		db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := httpx.NewMetrics(registry)
	bookingMetrics := service.NewMetrics(registry)

	bookingRepo := repository.NewBookingRepository(db)
	stationRepo := repository.NewStationRepository(db)
	ownerRepo := repository.NewOwnerRepository(db)
	checkIns := redisstore.NewStore(redisClient, cfg.CheckInTTL())

	stationService := service.NewStationService(stationRepo, bookingRepo, checkIns, logger)
	bookingService := service.NewBookingService(
		bookingRepo,
		stationRepo,
		ownerRepo,
		checkIns,
		bookingMetrics,
		logger,
		cfg.Booking.EnforceSlotCapacity,
	)
	dashboardService := service.NewDashboardService(bookingRepo, stationService, service.DashboardDefaults{
		Latitude:  cfg.Dashboard.DefaultLatitude,
		Longitude: cfg.Dashboard.DefaultLongitude,
		RadiusKm:  cfg.Dashboard.RadiusKm,
	})

	router := httpserver.NewRouter(httpserver.Routes{
		Stations:  handlers.NewStationHandler(stationService, logger),
		Bookings:  handlers.NewBookingHandler(bookingService, logger),
		Dashboard: handlers.NewDashboardHandler(dashboardService, logger),
		Health: httpx.HealthHandler(2*time.Second,
			httpx.Check{Name: "postgres", Probe: libdb.Probe(db)},
			httpx.Check{Name: "redis", Probe: libredis.Probe(redisClient)},
		),
		Metrics:   httpMetrics.Handler(),
	})
	server := httpx.NewServer(cfg.HTTPAddress(), router, logger,
		httpx.RecoveryMiddleware(logger),
		httpx.LoggingMiddleware(logger),
		auth.FromHeadersMiddleware,
		httpMetrics.Middleware,
	)

	return &App{
		server:      server,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
