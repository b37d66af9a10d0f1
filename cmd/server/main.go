package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"ridehail/internal/app"
	"ridehail/internal/auth"
	"ridehail/internal/config"
	"ridehail/internal/events"
	"ridehail/internal/handler"
	"ridehail/internal/logger"
	"ridehail/internal/maps"
	"ridehail/internal/realtime"
	internalRedis "ridehail/internal/redis"
	"ridehail/internal/repository/postgres"
	"ridehail/internal/service"
	"ridehail/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}

	cfg := config.Load()
	log := logger.New(cfg.Log.Service, cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic comes up before the database so the driver can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn("new relic disabled", "error", err)
		} else {
			log.Info("new relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		fatal(log, "failed to connect to database", err)
	}
	defer db.Close()
	log.Info("connected to postgres", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	defer redisClient.Close()
	log.Info("connected to redis", "addr", cfg.Redis.Addr)

	publisher, err := app.NewEventPublisher(cfg.RabbitMQ, log)
	if err != nil {
		fatal(log, "failed to connect to rabbitmq", err)
	}
	if publisher != nil {
		defer publisher.Close()
		log.Info("publishing ride events", "exchange", cfg.RabbitMQ.Exchange)
	}

	server, hub, err := wireServer(db, redisClient, publisher, nrApp, cfg, log)
	if err != nil {
		fatal(log, "failed to wire server", err)
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if nrApp != nil {
		nrApp.Shutdown(2 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server along with
// the push hub so it can be closed on shutdown.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	publisher *events.Publisher,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *slog.Logger,
) (*http.Server, *realtime.Hub, error) {
	// Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	routeCache := internalRedis.NewRouteCache(redisClient, cfg.Ride.RouteCacheTTL)
	idempotencyStore := internalRedis.NewIdempotencyStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	captainRepo := postgres.NewCaptainRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	transactor := postgres.NewTransactor(db)

	// External lookups.
	resolver, err := maps.NewResolver(cfg.Maps.APIKey, cfg.Maps.Timeout)
	if err != nil {
		return nil, nil, err
	}
	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout)

	otp, err := service.NewOTPGenerator(cfg.Ride.OTPLength)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, nil, err
	}

	// Services.
	sessionService := service.NewSessionService(userRepo, captainRepo)
	captainService := service.NewCaptainService(locationStore, captainRepo)
	finder := service.NewNearbyCaptainFinder(locationStore, captainRepo, cfg.Ride.SearchRadiusKm)
	hub := realtime.NewHub(sessionService, captainService, log)

	// A nil *events.Publisher must not become a non-nil interface.
	var eventPublisher service.EventPublisher
	var eventsHealth app.LivenessChecker
	if publisher != nil {
		eventPublisher = publisher
		eventsHealth = publisher
	}
	notificationService := service.NewNotificationService(hub, eventPublisher, log)

	rideService := service.NewRideService(service.RideServiceDeps{
		RideRepo:              rideRepo,
		CaptainRepo:           captainRepo,
		UserRepo:              userRepo,
		Transactor:            transactor,
		Routes:                resolver,
		Weather:               weatherClient,
		Fares:                 service.NewFareCalculator(nil),
		OTP:                   otp,
		Finder:                finder,
		Notifier:              notificationService,
		Locks:                 lockStore,
		RouteCache:            routeCache,
		Logger:                log,
		ConfirmLockTTL:        cfg.Ride.ConfirmLockTTL,
		FareOverrideMaxFactor: cfg.Ride.FareOverrideMaxFactor,
	})

	// Handlers.
	rideHandler := handler.NewRideHandler(rideService)
	userHandler := handler.NewUserHandler(userRepo, tokens)
	captainHandler := handler.NewCaptainHandler(captainService, captainRepo, tokens)
	mapsHandler := handler.NewMapsHandler(resolver)

	router := app.NewRouter(app.RouterDeps{
		RideHandler:      rideHandler,
		CaptainHandler:   captainHandler,
		UserHandler:      userHandler,
		MapsHandler:      mapsHandler,
		Socket:           hub.ServeWS,
		Tokens:           tokens,
		IdempotencyStore: idempotencyStore,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		NewRelicApp:      nrApp,
		Sockets:          hub,
		Events:           eventsHealth,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, hub, nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
