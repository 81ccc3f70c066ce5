package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	disbapp "github.com/suweldo/payroll-backend/internal/application/disbursement"
	loanapp "github.com/suweldo/payroll-backend/internal/application/loan"
	payrollapp "github.com/suweldo/payroll-backend/internal/application/payroll"
	payslipapp "github.com/suweldo/payroll-backend/internal/application/payslip"
	"github.com/suweldo/payroll-backend/internal/domain/shared"
	"github.com/suweldo/payroll-backend/internal/infrastructure/cache"
	"github.com/suweldo/payroll-backend/internal/infrastructure/config"
	"github.com/suweldo/payroll-backend/internal/infrastructure/event"
	"github.com/suweldo/payroll-backend/internal/infrastructure/gateway"
	"github.com/suweldo/payroll-backend/internal/infrastructure/logger"
	"github.com/suweldo/payroll-backend/internal/infrastructure/persistence"
	"github.com/suweldo/payroll-backend/internal/infrastructure/scheduler"
	"github.com/suweldo/payroll-backend/internal/infrastructure/statutory"
	"github.com/suweldo/payroll-backend/internal/infrastructure/storage"
	"github.com/suweldo/payroll-backend/internal/infrastructure/timekeeping"
	"github.com/suweldo/payroll-backend/internal/interfaces/http/handler"
	"github.com/suweldo/payroll-backend/internal/interfaces/http/middleware"
	"github.com/suweldo/payroll-backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
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

	log.Info("Starting Payroll Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	periodRepo := persistence.NewGormPeriodRepository(db.DB)
	calcRepo := persistence.NewGormCalculationRepository(db.DB)
	calcLogRepo := persistence.NewGormCalculationLogRepository(db.DB)
	historyRepo := persistence.NewGormApprovalHistoryRepository(db.DB)
	adjustmentRepo := persistence.NewGormAdjustmentRepository(db.DB)
	profileRepo := persistence.NewGormProfileRepository(db.DB)
	componentRepo := persistence.NewGormSalaryComponentRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	installmentRepo := persistence.NewGormLoanDeductionRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	methodRepo := persistence.NewGormMethodRepository(db.DB)
	bankBatchRepo := persistence.NewGormBankBatchRepository(db.DB)
	cashBatchRepo := persistence.NewGormCashBatchRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	payslipRepo := persistence.NewGormPayslipRepository(db.DB)

	// Shared clock used by every service; tests swap in a fixed clock
	clock := shared.SystemClock{}

	// Event bus with the audit trail subscribed to every domain event
	eventBus := event.NewInMemoryEventBus(log)
	auditSub := event.NewAuditSubscriber(auditRepo, clock, log)
	eventBus.Subscribe(auditSub, auditSub.EventTypes()...)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Idempotency store for settlement deduplication (Redis with optional
	// in-memory fallback outside production)
	allowFallback := cfg.App.Env != "production"
	idemStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(allowFallback),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	idemConfig := shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}

	// Bank file artifact storage (S3 or local disk)
	fileStore, err := storage.NewFileStore(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to create file store", zap.Error(err))
	}

	// Disbursement provider gateway
	payGateway, err := gateway.NewGateway(cfg.Gateway, log)
	if err != nil {
		log.Fatal("Failed to create payment gateway", zap.Error(err))
	}

	// Statutory tables: built-in defaults, or a JSON override file
	var tables payrollapp.StatutoryTablesProvider
	if cfg.Payroll.StatutoryTablesFile != "" {
		tables, err = statutory.NewFileProvider(cfg.Payroll.StatutoryTablesFile)
		if err != nil {
			log.Fatal("Failed to load statutory tables", zap.Error(err))
		}
		log.Info("Loaded statutory tables from file",
			zap.String("path", cfg.Payroll.StatutoryTablesFile))
	} else {
		tables = statutory.NewDefaultProvider()
	}

	// Timekeeping snapshots come from the imported summary table
	attendance := timekeeping.NewGormAttendanceProvider(db.DB)

	// Calculation policy from config
	policy := payrollapp.DefaultCalculationPolicy()
	if cfg.Payroll.CalculationWorkers > 0 {
		policy.Workers = cfg.Payroll.CalculationWorkers
	}
	if cfg.Payroll.AdjustmentAutoApprovalLimit > 0 {
		policy.AdjustmentApprovalThreshold = decimal.NewFromFloat(cfg.Payroll.AdjustmentAutoApprovalLimit)
	}

	// Initialize application services
	periodService := payrollapp.NewPeriodService(periodRepo, calcRepo, historyRepo, calcLogRepo, eventBus, clock, log)
	calculationService := payrollapp.NewCalculationService(periodRepo, calcRepo, profileRepo, calcLogRepo, loanRepo, installmentRepo, attendance, tables, eventBus, policy, clock, log)
	adjustmentService := payrollapp.NewAdjustmentService(periodRepo, calcRepo, adjustmentRepo, eventBus, policy, clock, log)
	profileService := payrollapp.NewProfileService(profileRepo, componentRepo, cfg.Payroll.EncryptionKey, clock, log)
	componentService := payrollapp.NewSalaryComponentService(componentRepo, clock, log)
	loanService := loanapp.NewLoanService(loanRepo, installmentRepo, periodRepo, calcRepo, eventBus, clock, log)
	paymentService := disbapp.NewPaymentService(paymentRepo, methodRepo, periodRepo, calcRepo, profileRepo, auditRepo, payGateway, idemStore, idemConfig, eventBus, clock, log)
	bankBatchService := disbapp.NewBankBatchService(bankBatchRepo, paymentRepo, methodRepo, profileRepo, auditRepo, fileStore, eventBus, clock, log, cfg.Payroll.EncryptionKey)
	cashBatchService := disbapp.NewCashBatchService(cashBatchRepo, paymentRepo, methodRepo, auditRepo, eventBus, clock, log, cfg.Payroll.UnclaimedEnvelopeDays)
	payslipService := payslipapp.NewPayslipService(payslipRepo, paymentRepo, calcRepo, clock, log)

	// Background sweeps: loan defaults and unclaimed cash envelopes
	var cronTrigger *scheduler.CronTrigger
	if cfg.Scheduler.Enabled {
		sweepExecutor := scheduler.NewSweepExecutor(loanService, cashBatchService, cfg.Payroll.LoanGraceDays, log)
		sched := scheduler.NewScheduler(scheduler.Config{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, sweepExecutor, log)
		if err := sched.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := sched.Stop(stopCtx); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()

		triggerConfig, err := scheduler.ParseDailySchedule(cfg.Scheduler.DailyCronSchedule)
		if err != nil {
			log.Fatal("Invalid daily cron schedule",
				zap.String("schedule", cfg.Scheduler.DailyCronSchedule), zap.Error(err))
		}
		cronTrigger = scheduler.NewCronTrigger(triggerConfig, sched, log)
		if err := cronTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := cronTrigger.Stop(stopCtx); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.String("daily_schedule", cfg.Scheduler.DailyCronSchedule),
			zap.Int("loan_grace_days", cfg.Payroll.LoanGraceDays))
	}

	// Gin setup
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
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Actor(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	engine.Use(middleware.HTTPMetrics(cfg.Telemetry.Enabled))

	// Liveness probe outside the versioned API
	engine.GET("/health", healthHandler(db, log))

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewPeriodHandler(periodService)).
		Register(handler.NewCalculationHandler(calculationService)).
		Register(handler.NewAdjustmentHandler(adjustmentService)).
		Register(handler.NewProfileHandler(profileService)).
		Register(handler.NewSalaryComponentHandler(componentService)).
		Register(handler.NewLoanHandler(loanService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewBankBatchHandler(bankBatchService)).
		Register(handler.NewCashBatchHandler(cashBatchService)).
		Register(handler.NewPayslipHandler(payslipService)).
		Register(handler.NewSystemHandler(db.DB, cronTrigger, cfg.Scheduler.Enabled)).
		Setup()

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
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
