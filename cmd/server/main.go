package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	offboardingapp "github.com/storesync/backend/internal/application/offboarding"
	recomputeapp "github.com/storesync/backend/internal/application/recompute"
	storeapp "github.com/storesync/backend/internal/application/store"
	syncapp "github.com/storesync/backend/internal/application/sync"
	webhookapp "github.com/storesync/backend/internal/application/webhook"
	"github.com/storesync/backend/internal/domain/store"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	"github.com/storesync/backend/internal/infrastructure/scheduler"
	"github.com/storesync/backend/internal/infrastructure/shopify"
	"github.com/storesync/backend/internal/infrastructure/storage"
	"github.com/storesync/backend/internal/infrastructure/telemetry"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
	"github.com/storesync/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting StoreSync server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Root context for background loops; cancelled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Meter provider shutdown failed", zap.Error(err))
		}
	}()

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize OTEL logs exporter, keeping stdout only", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
				log.Warn("Logger provider shutdown failed", zap.Error(err))
			}
		}()
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		})
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingEndpoint,
		ApplicationName:   cfg.App.Name,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize profiler, continuing without profiling", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Warn("Profiler shutdown failed", zap.Error(err))
			}
		}()
		if profiler.IsEnabled() && tracerProvider.IsEnabled() {
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to enable span profiles", zap.Error(err))
			}
		}
	}

	// Initialize database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Database close failed", zap.Error(err))
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	var syncMetrics *telemetry.SyncMetrics
	if meterProvider.IsEnabled() {
		syncMetrics, err = telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
			Meter:           meterProvider.Meter("storesync"),
			Logger:          log,
			BacklogProvider: telemetry.NewGormBacklogProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize sync metrics", zap.Error(err))
			syncMetrics = nil
		} else {
			syncMetrics.StartPeriodicCollection(ctx, time.Minute)
		}
	}

	// Initialize repositories
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	sessionRepo := persistence.NewGormSyncSessionRepository(db.DB)
	repos := syncapp.Repos{
		Stores:       storeRepo,
		Sessions:     sessionRepo,
		Products:     persistence.NewGormProductRepository(db.DB),
		Variants:     persistence.NewGormVariantRepository(db.DB),
		Levels:       persistence.NewGormInventoryLevelRepository(db.DB),
		Customers:    persistence.NewGormCustomerRepository(db.DB),
		Orders:       persistence.NewGormOrderRepository(db.DB),
		LineItems:    persistence.NewGormLineItemRepository(db.DB),
		Transactions: persistence.NewGormTransactionRepository(db.DB),
		Refunds:      persistence.NewGormRefundRepository(db.DB),
		Fulfillments: persistence.NewGormFulfillmentRepository(db.DB),
	}
	receiptLedger := persistence.NewGormReceiptLedger(db.DB)
	pendingRepo := persistence.NewGormPendingWebhookRepository(db.DB)
	recomputeJobRepo := persistence.NewGormRecomputeJobRepository(db.DB)

	// Initialize caches
	fastPath, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	statusCache := newStatusCache(cfg.Redis, log)
	defer func() {
		if err := statusCache.Close(); err != nil {
			log.Warn("Status cache close failed", zap.Error(err))
		}
	}()

	// Initialize Shopify Admin API client
	client := shopify.NewClient(shopify.ClientConfig{
		APIVersion:     cfg.Shopify.APIVersion,
		RequestTimeout: cfg.Shopify.RequestTimeout,
	})
	fetcherCfg := shopify.FetcherConfig{
		InitialPageSize: cfg.Sync.InitialPageSize,
		MinPageSize:     cfg.Sync.MinPageSize,
		CostBackoff:     cfg.Sync.CostBackoff,
		PageDelay:       cfg.Sync.PageDelay,
	}
	// a nil *SyncMetrics must not end up inside the observer interfaces
	var (
		syncObserver syncapp.Metrics
		runRecorder  recomputeapp.RunRecorder
	)
	if syncMetrics != nil {
		syncObserver = syncMetrics
		runRecorder = syncMetrics
		fetcherCfg.OnPageSizeHalved = func(ctx context.Context, resource string, _ int) {
			syncMetrics.RecordPageSizeHalved(ctx, resource)
		}
	}
	fetcher := shopify.NewFetcher(client, fetcherCfg)

	// Initialize application services
	dispatcher := recomputeapp.NewDispatcher(recomputeJobRepo, storeRepo, statusCache, runRecorder, cfg.Recompute, log)
	defer dispatcher.Close()

	syncService := syncapp.NewService(repos, statusCache, fetcher, dispatcher, syncapp.NewLoggingCostRecorder(log), syncObserver, cfg.Sync, log)
	offboardingService := offboardingapp.NewService(storeRepo, persistence.NewStorePurger(db.DB), statusCache, cfg.Purge, log)

	// The scheduler doubles as the job queue: stores enqueue their initial
	// sync and their offboarding purge, workers dispatch to the services.
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, scheduler.NewTaskExecutor(syncService, offboardingService, log), log)
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	storeService := storeapp.NewService(storeRepo, sessionRepo, statusCache, sched, log)

	var archiver webhookapp.Archiver
	if cfg.Archive.Enabled {
		s3Archive, err := storage.NewS3Archive(&cfg.Archive, log)
		if err != nil {
			log.Fatal("Failed to initialize payload archive", zap.Error(err))
		}
		bucketCtx, bucketCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := s3Archive.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Could not verify archive bucket", zap.Error(err))
		}
		bucketCancel()
		archiver = s3Archive
	} else {
		archiver = storage.NewNoopArchive(log)
	}

	processor := webhookapp.NewProcessor(repos, receiptLedger, fastPath, pendingRepo, dispatcher, syncService, sched, cfg.Webhook, log)
	drainer := webhookapp.NewDrainer(processor, archiver, log)
	go drainer.Run(ctx)

	// Initialize Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if profiler != nil && profiler.IsEnabled() {
		engine.Use(middleware.Profiling())
	}

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.App.Env != "production" {
		corsCfg.AllowOrigins = []string{"*"}
		corsCfg.AllowCredentials = false
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.TenantContext())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	engine.GET("/health", healthHandler(db, log))

	// Webhook intake gets its own rate limit; the platform retries on 429
	webhookLimiter := middleware.NewRateLimiter(300, time.Minute)
	router.BuildRoutes(engine, router.Handlers{
		System:  handler.NewSystemHandler(),
		Store:   handler.NewStoreHandler(storeService, sched),
		Webhook: handler.NewWebhookHandler(processor, cfg, syncMetrics, log),
	}, middleware.RateLimit(webhookLimiter))

	// Start HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited")
}

// newStatusCache prefers Redis and falls back to the in-process cache when
// Redis is unreachable at startup.
func newStatusCache(cfg config.RedisConfig, log *zap.Logger) store.StatusCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory sync status cache", zap.Error(err))
		_ = client.Close()
		return cache.NewInMemoryStatusCache()
	}

	log.Info("Using Redis sync status cache", zap.String("host", cfg.Host))
	return cache.NewRedisStatusCache(client)
}

func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
