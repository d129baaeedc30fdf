package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	evaluationapp "github.com/procurement/backend/internal/application/evaluation"
	appevent "github.com/procurement/backend/internal/application/event"
	identityapp "github.com/procurement/backend/internal/application/identity"
	notificationapp "github.com/procurement/backend/internal/application/notification"
	"github.com/procurement/backend/internal/application/port"
	purchaseapp "github.com/procurement/backend/internal/application/purchase"
	quotaapp "github.com/procurement/backend/internal/application/quota"
	requestapp "github.com/procurement/backend/internal/application/request"
	sourcingapp "github.com/procurement/backend/internal/application/sourcing"
	stockapp "github.com/procurement/backend/internal/application/stock"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/infrastructure/auth"
	"github.com/procurement/backend/internal/infrastructure/cache"
	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/procurement/backend/internal/infrastructure/event"
	"github.com/procurement/backend/internal/infrastructure/export"
	"github.com/procurement/backend/internal/infrastructure/logger"
	"github.com/procurement/backend/internal/infrastructure/mail"
	"github.com/procurement/backend/internal/infrastructure/persistence"
	"github.com/procurement/backend/internal/infrastructure/scheduler"
	"github.com/procurement/backend/internal/infrastructure/storage"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"github.com/procurement/backend/internal/interfaces/http/handler"
	"github.com/procurement/backend/internal/interfaces/http/middleware"
	"github.com/procurement/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/procurement/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Construction Procurement API
//	@version		1.0
//	@description	Material requests, quotas, stock, RFQs, purchase orders, delivery and payment for construction sites.

//	@contact.name	API Support
//	@contact.url	https://github.com/procurement/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromAppConfig(cfg.Log, cfg.App.Env))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting procurement backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// Telemetry providers are no-ops when disabled
	tracerProvider, err := telemetry.NewTracerProvider(rootCtx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(rootCtx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "meter provider", meterProvider.Shutdown)

	// Database with a zap-backed GORM logger
	sqlLog := logger.NewSQLLogger(log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, sqlLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	schemaVersion, dirty, err := db.SchemaVersion(rootCtx)
	switch {
	case err != nil:
		log.Fatal("Database schema unavailable, run the migrate command first", zap.Error(err))
	case dirty:
		log.Fatal("Database schema is dirty, fix it with migrate force", zap.Uint("version", schemaVersion))
	}
	log.Info("Database connected successfully", zap.Uint("schema_version", schemaVersion))

	// Redis-backed coordination stores, or in-memory ones without Redis
	backends, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to initialize cache backends", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Error closing cache backends", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if backends.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(backends.Client)
	}

	objectStorage, memoryStorage := newObjectStorage(rootCtx, cfg, log)
	mailer := mail.New(cfg.Mail, log)
	exporter := export.NewExcelExporter()

	// Repositories
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	requestRepo := persistence.NewGormMaterialRequestRepository(db.DB)
	quotaRepo := persistence.NewGormMaterialQuotaRepository(db.DB)
	issueRepo := persistence.NewGormStockIssueRepository(db.DB)
	rfqRepo := persistence.NewGormRFQRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	trackingRepo := persistence.NewGormTrackingRepository(db.DB)
	evaluationRepo := persistence.NewGormEvaluationRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, userRepo, backends.Dedup, log)
	var notifier port.Notifier = notificationService

	quotaService := quotaapp.NewQuotaService(quotaRepo, materialRepo, projectRepo, requestRepo, log)
	requestService := requestapp.NewRequestService(txScope, requestRepo, projectRepo, materialRepo, quotaService, notifier, log)
	requestService.SetApprovalLevels(approval.DefaultLevels)
	stockService := stockapp.NewStockService(txScope, requestRepo, materialRepo, issueRepo, notifier, log)
	sourcingService := sourcingapp.NewSourcingService(txScope, requestRepo, projectRepo, materialRepo, supplierRepo,
		rfqRepo, quotationRepo, mailer, exporter, notifier, log)
	sourcingService.SetMinSuppliers(cfg.Workflow.MinRFQSuppliers)
	orderService := purchaseapp.NewPurchaseOrderService(txScope, orderRepo, supplierRepo, mailer, exporter, notifier, log)
	orderService.SetWorkflowDefaults(cfg.Workflow.VATRate, approval.DefaultLevels)
	deliveryService := purchaseapp.NewDeliveryService(txScope, deliveryRepo, objectStorage, notifier, log)
	paymentService := purchaseapp.NewPaymentService(txScope, orderRepo, deliveryRepo, paymentRepo, notifier, log)
	trackingService := purchaseapp.NewTrackingService(txScope, orderRepo, trackingRepo, requestRepo, userRepo, mailer, notifier, log)
	trackingService.SetDelayAlertTTL(cfg.Workflow.DelayAlertDedupTTL)
	evaluationService := evaluationapp.NewEvaluationService(txScope, evaluationRepo, supplierRepo, log)

	if created, err := authService.EnsureBootstrapAdmin(rootCtx, identityapp.BootstrapAdminInput{
		Name:     cfg.Bootstrap.AdminName,
		Email:    cfg.Bootstrap.AdminEmail,
		Password: cfg.Bootstrap.AdminPassword,
	}); err != nil {
		log.Fatal("Failed to bootstrap administrator", zap.Error(err))
	} else if created {
		log.Info("Bootstrap administrator created", zap.String("email", cfg.Bootstrap.AdminEmail))
	}

	// Business metrics
	if meterProvider.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:            meterProvider.Meter(telemetry.TracerName),
			Logger:           log,
			CollectInterval:  cfg.Telemetry.MetricsInterval,
			WorkflowProvider: telemetry.NewGormWorkflowMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			requestService.SetBusinessMetrics(businessMetrics)
			stockService.SetBusinessMetrics(businessMetrics)
			sourcingService.SetBusinessMetrics(businessMetrics)
			orderService.SetBusinessMetrics(businessMetrics)
			paymentService.SetBusinessMetrics(businessMetrics)
			trackingService.SetBusinessMetrics(businessMetrics)
			businessMetrics.StartPeriodicCollection(rootCtx, cfg.Telemetry.MetricsInterval)
			defer businessMetrics.Stop()
		}
	}

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	activityLog := appevent.NewActivityLogHandler(log)
	eventBus.Subscribe(activityLog)
	evaluationReminder := event.NewOnceHandler("evaluation_reminder",
		appevent.NewEvaluationReminderHandler(orderRepo, notifier), backends.Dedup, cfg.Event.DedupTTL, log)
	eventBus.Subscribe(evaluationReminder)
	log.Info("Event handlers registered",
		zap.Strings("evaluation_reminder_events", evaluationReminder.EventTypes()),
	)

	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	requestService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)
	sourcingService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	deliveryService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	trackingService.SetEventPublisher(eventBus)

	// Background jobs
	if cfg.Scheduler.Enabled {
		jobScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:    cfg.Scheduler.Enabled,
			JobTimeout: cfg.Scheduler.JobTimeout,
			LockTTL:    cfg.Scheduler.LockTTL,
		}, backends.JobLocker, log)
		if err := jobScheduler.Register(scheduler.NewOverdueScanJob(trackingService, log), cfg.Scheduler.OverdueScanInterval); err != nil {
			log.Fatal("Failed to register overdue scan", zap.Error(err))
		}
		if err := jobScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Duration("overdue_scan_interval", cfg.Scheduler.OverdueScanInterval),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// HTTP handlers
	healthChecks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if backends.Client != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return backends.Client.Ping(ctx).Err() }
	}
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Request:       handler.NewRequestHandler(requestService),
		Quota:         handler.NewQuotaHandler(quotaService),
		Stock:         handler.NewStockHandler(stockService),
		Sourcing:      handler.NewSourcingHandler(sourcingService),
		PurchaseOrder: handler.NewPurchaseOrderHandler(orderService),
		Delivery:      handler.NewDeliveryHandler(deliveryService),
		Payment:       handler.NewPaymentHandler(paymentService),
		Tracking:      handler.NewTrackingHandler(trackingService),
		Evaluation:    handler.NewEvaluationHandler(evaluationService),
		Notification:  handler.NewNotificationHandler(notificationService),
		System:        handler.NewSystemHandler(version, healthChecks),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing and metrics
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))
	engine.Use(logger.AccessLog(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go rateLimiter.RunCleanup(rootCtx)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// API routes behind JWT authentication
	r := router.New(engine, "v1")
	skipPaths := make([]string, 0, len(router.PublicPaths))
	for _, p := range router.PublicPaths {
		skipPaths = append(skipPaths, r.BasePath()+p)
	}
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths:      skipPaths,
		Logger:         log,
	})
	r.Use(jwtMiddleware)
	r.Mount(router.ProcurementGroups(handlers)...)
	r.Setup()

	// Unversioned health probe for load balancers
	engine.GET("/health", handlers.System.Health)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.App.Env == "production",
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Photos kept in memory are served back under the download URL prefix
	if memoryStorage != nil {
		engine.GET("/files/*key", serveMemoryObject(memoryStorage))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopRoot()

	log.Info("Server exited gracefully")
}

// newObjectStorage returns S3 storage when a bucket is configured and an
// in-memory store otherwise. The second result is non-nil only for the
// in-memory store.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (port.ObjectStorage, *storage.MemoryObjectStorage) {
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		log.Info("Object storage ready", zap.String("bucket", s3Storage.Bucket()))
		return s3Storage, nil
	}

	log.Warn("No storage bucket configured, delivery photos are kept in memory")
	mem := storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + "/files")
	return mem, mem
}

// serveMemoryObject streams an object from the in-memory store
func serveMemoryObject(store *storage.MemoryObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		data, contentType, ok := store.Get(key)
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// shutdownWithTimeout calls fn with a bounded context and logs failures
func shutdownWithTimeout(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
