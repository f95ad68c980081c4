package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	syncapp "github.com/saladpride-png/shopify-mirakl-sync/internal/application/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/cache"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/config"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/ecommerce"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/logger"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/persistence"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/scheduler"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/storage"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/infrastructure/telemetry"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/interfaces/http/handler"
	"github.com/saladpride-png/shopify-mirakl-sync/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shopify-mirakl-sync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("checkpoint_driver", cfg.Checkpoint.Driver),
	)

	if err := cfg.ValidateCredentials(); err != nil {
		log.Fatal("Invalid platform credentials", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.Telemetry.ServiceVersion,
		Environment:       cfg.App.Env,
		StorefrontShop:    cfg.Shopify.ShopDomain,
		MarketplaceShopID: cfg.Mirakl.ShopID,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	syncMetrics, err := telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
		Meter:  meterProvider.Meter("sync"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}

	// Platform gateways
	shopify, err := ecommerce.NewShopifyAdapter(shopifyConfig(cfg.Shopify))
	if err != nil {
		log.Fatal("Failed to create Shopify adapter", zap.Error(err))
	}
	mirakl, err := ecommerce.NewMiraklAdapter(miraklConfig(cfg.Mirakl))
	if err != nil {
		log.Fatal("Failed to create Mirakl adapter", zap.Error(err))
	}

	health := handler.NewHealthHandler()

	// Checkpoint store
	var store integration.CheckpointStore
	switch cfg.Checkpoint.Driver {
	case "database":
		db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to migrate checkpoint tables", zap.Error(err))
		}
		store = persistence.NewGormCheckpointStore(db.DB, log)
		health.AddCheck("checkpoint_store", db.HealthCheck)
		log.Info("Database checkpoint store ready", zap.String("driver", cfg.Database.Driver))
	default:
		store = persistence.NewFileCheckpointStore(cfg.Checkpoint.Path, log)
		log.Info("File checkpoint store ready", zap.String("path", cfg.Checkpoint.Path))
	}

	// Run lock
	runLock, err := cache.NewRunLockFactory(cfg.Redis, cache.WithLogger(log)).CreateLock()
	if err != nil {
		log.Fatal("Failed to create run lock", zap.Error(err))
	}
	defer func() {
		_ = runLock.Close()
	}()

	serviceConfig := syncapp.SyncServiceConfig{
		Catalog:     shopify,
		Orders:      shopify,
		Marketplace: mirakl,
		Store:       store,
		Lock:        runLock,
		Recorder:    syncMetrics,
		Options: syncapp.SyncOptions{
			ProductLimit:        cfg.Sync.ProductLimit,
			TrackingOrderLimit:  cfg.Sync.TrackingOrderLimit,
			AbortOnOrderFailure: cfg.Sync.AbortOnOrderFailure,
			Offer: syncapp.OfferTransformOptions{
				DescriptionMaxLength: cfg.Sync.DescriptionMaxLength,
				LeadTimeToShip:       cfg.Sync.LeadTimeToShip,
			},
			HistorySize: cfg.Sync.HistorySize,
		},
		Logger: log,
	}

	// Offer file archive
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3OfferArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create offer archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("Offer archive bucket check failed", zap.Error(err))
		}
		serviceConfig.Archive = archive
	}

	service, err := syncapp.NewSyncService(serviceConfig)
	if err != nil {
		log.Fatal("Failed to create sync service", zap.Error(err))
	}
	service.LoadCheckpoint(ctx)
	syncMetrics.StartPeriodicCollection(ctx, service, time.Minute)

	if cfg.Sync.RunOnStartup {
		startupCtx, startupLog := logger.WithTrigger(ctx, log, logger.TriggerStartup)
		for _, result := range service.RunAll(startupCtx) {
			startupLog.Info("Startup sync finished",
				zap.String("sync_type", string(result.Type)),
				zap.String("status", string(result.Status)),
			)
		}
	}

	// Scheduler
	trigger, err := scheduler.NewSyncCronTrigger(scheduler.ConfigFromSchedule(cfg.Schedule), service, log)
	if err != nil {
		log.Fatal("Failed to create sync scheduler", zap.Error(err))
	}
	if cfg.Schedule.Enabled {
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
	} else {
		log.Info("Scheduled sync disabled, manual runs only")
	}

	// Admin HTTP server
	var srv *http.Server
	if cfg.HTTP.Enabled {
		engine := router.NewAdminEngine(log, health, handler.NewSyncHandler(service, trigger), router.AdminConfig{
			AdminToken: cfg.HTTP.AdminToken,
		})
		srv = &http.Server{
			Addr:         ":" + cfg.HTTP.Port,
			Handler:      engine,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		}

		go func() {
			log.Info("Admin server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("Failed to start admin server", zap.Error(err))
			}
		}()
	}

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if trigger.IsRunning() {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop sync scheduler", zap.Error(err))
		}
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Admin server forced to shutdown", zap.Error(err))
		}
	}
	syncMetrics.Stop()
	if err := meterProvider.ForceFlush(shutdownCtx); err != nil {
		log.Warn("Failed to flush sync metrics", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}

	log.Info("Shutdown complete")
}

func shopifyConfig(cfg config.ShopifyConfig) *ecommerce.ShopifyConfig {
	c := ecommerce.NewShopifyConfig(cfg.ShopDomain, cfg.AccessToken)
	if cfg.APIVersion != "" {
		c.APIVersion = cfg.APIVersion
	}
	if cfg.APIBaseURL != "" {
		c.APIBaseURL = cfg.APIBaseURL
	}
	if cfg.TimeoutSeconds > 0 {
		c.TimeoutSeconds = cfg.TimeoutSeconds
	}
	if cfg.RequestsPerSecond > 0 {
		c.RequestsPerSecond = cfg.RequestsPerSecond
	}
	if cfg.Burst > 0 {
		c.Burst = cfg.Burst
	}
	return c
}

func miraklConfig(cfg config.MiraklConfig) *ecommerce.MiraklConfig {
	c := ecommerce.NewMiraklConfig(cfg.APIBaseURL, cfg.APIKey)
	c.ShopID = cfg.ShopID
	if len(cfg.OrderStates) > 0 {
		c.OrderStates = cfg.OrderStates
	}
	if cfg.TimeoutSeconds > 0 {
		c.TimeoutSeconds = cfg.TimeoutSeconds
	}
	if cfg.RequestsPerSecond > 0 {
		c.RequestsPerSecond = cfg.RequestsPerSecond
	}
	if cfg.Burst > 0 {
		c.Burst = cfg.Burst
	}
	return c
}
