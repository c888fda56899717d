package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/payshield/risk-engine/internal/api/rest"
	"github.com/payshield/risk-engine/internal/infrastructure/audit"
	"github.com/payshield/risk-engine/internal/infrastructure/cache"
	"github.com/payshield/risk-engine/internal/infrastructure/collaborator"
	"github.com/payshield/risk-engine/internal/infrastructure/config"
	"github.com/payshield/risk-engine/internal/infrastructure/ratelimit"
	"github.com/payshield/risk-engine/internal/infrastructure/telemetry"
	"github.com/payshield/risk-engine/internal/metrics"
	fraudsvc "github.com/payshield/risk-engine/internal/service/fraud"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    "risk-engine",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// The metrics registry records through the global meter provider, so it
	// must come after telemetry initialization.
	registry, err := metrics.NewRegistry("risk-engine")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create zap logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	redisClient, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	limits, err := cfg.Velocity.Limits()
	if err != nil {
		log.Fatalf("Invalid velocity limits: %v", err)
	}

	velocityStore := collaborator.NewRedisVelocityStore(redisClient, *limits, zapLogger)

	geoResolver, err := collaborator.NewStaticGeoResolver(
		collaborator.DefaultRanges(),
		collaborator.DefaultVPNRanges(),
		cfg.Geo.HighRiskCountries,
	)
	if err != nil {
		log.Fatalf("Failed to build geo resolver: %v", err)
	}

	deviceRegistry := collaborator.NewDeviceRegistry()
	behaviorStore := collaborator.NewBehaviorProfileStore()

	journal := audit.NewRedisJournal(redisClient, cfg.Audit.Stream)
	sink := audit.NewSink(journal, audit.Config{
		QueueSize:    cfg.Audit.QueueSize,
		MaxRetries:   cfg.Audit.MaxRetries,
		RetryBackoff: cfg.Audit.RetryBackoff,
	}, logger, registry)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := sink.Close(drainCtx); err != nil {
			logger.Error("audit sink drain failed", "error", err)
		}
	}()

	engine, err := fraudsvc.NewService(
		cfg.Engine,
		velocityStore,
		geoResolver,
		deviceRegistry,
		behaviorStore,
		sink,
		logger,
		fraudsvc.WithMetrics(registry),
	)
	if err != nil {
		log.Fatalf("Failed to create risk engine: %v", err)
	}

	services := rest.Services{
		Engine:   engine,
		Recorder: collaborator.NewRecorder(velocityStore, geoResolver, deviceRegistry, behaviorStore),
	}
	if perUser := cfg.Server.RateLimit.EvaluationsPerUserPerMinute; perUser > 0 {
		services.UserLimiter = ratelimit.NewRedisLimiter(redisClient, ratelimit.Config{
			Limit:  perUser,
			Window: time.Minute,
		}, zapLogger)
	}

	checkers := []rest.HealthChecker{
		rest.HealthCheckFunc{CheckerName: "redis", Fn: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}},
	}

	server := rest.NewServer(cfg, services, provider.PromRegistry, checkers, logger)

	logger.Info("risk engine starting",
		"version", cfg.Version,
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	logger.Info("risk engine stopped")
}
