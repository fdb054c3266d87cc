package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trackops/riskregistry/internal/application/service"
	"github.com/trackops/riskregistry/internal/config"
	"github.com/trackops/riskregistry/internal/domain/repository"
	domainservice "github.com/trackops/riskregistry/internal/domain/service"
	"github.com/trackops/riskregistry/internal/infrastructure/cache"
	"github.com/trackops/riskregistry/internal/infrastructure/monitoring"
	"github.com/trackops/riskregistry/internal/infrastructure/persistence/postgres"
	"github.com/trackops/riskregistry/internal/interfaces/http"
	"github.com/trackops/riskregistry/internal/interfaces/http/handlers"
	"github.com/trackops/riskregistry/pkg/logger"
)

func main() {
	// Logger for startup, replaced once config is loaded.
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})

	cfg, v, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	config.WatchLogLevel(v, appLogger)

	ctx := context.Background()

	shutdownTracer, err := monitoring.InitTracer(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			appLogger.Warn(context.Background(), "Tracer shutdown failed", logger.Error(err))
		}
	}()

	db, err := postgres.NewDBConnection(&cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to connect to database", err)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		appLogger.Fatal(ctx, "Failed to migrate schema", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	metrics := monitoring.NewMetrics()
	heatmapCache := cache.NewHeatmapCache(redisClient, &cfg.Redis, appLogger)

	// Repositories
	riskRepo := postgres.NewRiskRepository(db, appLogger)
	controlRepo := postgres.NewControlRepository(db, appLogger)
	taxonomyRepo := postgres.NewTaxonomyRepository(db, appLogger)
	actionRepo := postgres.NewActionRepository(db, appLogger)
	var txManager repository.TxManager = postgres.NewTxManager(db)

	// Domain services
	scoring := domainservice.NewScoringService()
	heatmap := domainservice.NewHeatmapService()

	// Application services
	appetites := service.NewAppetiteCache(time.Duration(cfg.Scoring.AppetiteCacheTTLSecs) * time.Second)
	rescorer := service.NewRescorer(riskRepo, controlRepo, taxonomyRepo, scoring, appetites, metrics, appLogger)
	riskSvc := service.NewRiskAppService(txManager, riskRepo, controlRepo, taxonomyRepo, actionRepo,
		rescorer, heatmap, heatmapCache, metrics, appLogger, cfg.Scoring)
	taxonomySvc := service.NewTaxonomyAppService(txManager, taxonomyRepo, riskRepo, rescorer, heatmapCache, appLogger)
	controlSvc := service.NewControlAppService(txManager, controlRepo, riskRepo, rescorer, heatmapCache, appLogger)
	actionSvc := service.NewActionAppService(txManager, actionRepo, riskRepo, appLogger)

	// HTTP layer
	router := http.NewRouter(
		cfg,
		appLogger,
		handlers.NewMiddleware(appLogger, metrics),
		handlers.NewHealthHandler(db, redisClient, appLogger),
		handlers.NewRiskHandler(riskSvc),
		handlers.NewTaxonomyHandler(taxonomySvc),
		handlers.NewControlHandler(controlSvc),
		handlers.NewActionHandler(actionSvc),
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := router.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "HTTP server shutdown failed", err)
		}
	}()

	if err := router.Start(); err != nil {
		appLogger.Fatal(ctx, "HTTP server failed", err)
	}
	appLogger.Info(context.Background(), "Server stopped")
}
