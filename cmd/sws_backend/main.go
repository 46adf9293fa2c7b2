package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/k3rn3l808/swift_sim_backend/internal/adapters/rateapi"
	portsrepo "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/repositories"
	portssvc "github.com/k3rn3l808/swift_sim_backend/internal/core/ports/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/core/services"
	"github.com/k3rn3l808/swift_sim_backend/internal/handlers"
	"github.com/k3rn3l808/swift_sim_backend/internal/middleware"
	"github.com/k3rn3l808/swift_sim_backend/internal/platform/config"
	rediscache "github.com/k3rn3l808/swift_sim_backend/internal/repositories/cache/redis"
	"github.com/k3rn3l808/swift_sim_backend/internal/repositories/database/pgsql"
	"github.com/k3rn3l808/swift_sim_backend/pkg/database"
	"github.com/k3rn3l808/swift_sim_backend/pkg/rabbitmq"
)

// @title SWS Backend API
// @version 1.0
// @description SWIFT wire transfer simulation backend.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Database connection pool
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories
	transferRepo := pgsql.NewTransferRepository(dbPool)
	userRepo := pgsql.NewUserRepository(dbPool)

	// Exchange rate cache (redis) and provider
	var rateCache portsrepo.RateCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		rateCache = rediscache.NewRateCache(redisClient, "")
		logger.Info("Redis rate cache enabled.")
	} else {
		rateCache = rediscache.NewNoopCache()
	}
	rateProvider := rateapi.NewClient(cfg.RateProviderURL)

	// Transfer event publisher (rabbitmq), best effort
	eventPublisher := portssvc.TransferEventPublisher(services.NewNoopEventPublisher())
	if cfg.AMQPURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.AMQPURL)
		if err != nil {
			logger.Warn("Failed to connect to message broker, events disabled", slog.String("error", err.Error()))
		} else {
			defer producer.Close()
			eventPublisher = services.NewEventPublisher(producer, logger)
			logger.Info("Transfer event publishing enabled.")
		}
	}

	// Services
	userService := services.NewUserService(userRepo, services.SeedAdminConfig{
		Username: cfg.SeedAdminUsername,
		Password: cfg.SeedAdminPassword,
		FullName: "System Administrator",
		Email:    cfg.SeedAdminEmail,
	})
	riskService := services.NewRiskService(transferRepo)
	rateService := services.NewExchangeRateService(rateCache, rateProvider)
	documentService := services.NewDocumentService(transferRepo)
	transferService := services.NewTransferService(transferRepo, userRepo, riskService, eventPublisher)

	scheduler := services.NewProgressionScheduler(transferRepo, transferService, logger)
	transferService.SetScheduler(scheduler)

	if err := userService.EnsureSeedAdmin(context.Background()); err != nil {
		logger.Error("Failed to ensure seed admin", slog.String("error", err.Error()))
		os.Exit(1)
	}

	resumeAutoProgression(context.Background(), transferRepo, scheduler, logger)

	// Periodic exchange rate refresh
	cronRunner := cron.New()
	if _, err := cronRunner.AddFunc(cfg.RateRefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		rateService.RefreshPopularBases(ctx)
	}); err != nil {
		logger.Error("Invalid RATE_REFRESH_SCHEDULE", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := &portssvc.ServiceContainer{
		User:         userService,
		Transfer:     transferService,
		Scheduler:    scheduler,
		ExchangeRate: rateService,
		Risk:         riskService,
		Document:     documentService,
	}
	handlers.RegisterRoutes(r, cfg, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM: stop accepting requests, then drain
	// the progression scheduler.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	if err := scheduler.Shutdown(shutdownCtx); err != nil {
		logger.Error("Scheduler shutdown timed out", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped.")
}

// runMigrations applies all pending migrations using a temporary database/sql
// connection compatible with the pgx pool.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// resumeAutoProgression restarts scheduler tasks for transfers that were
// mid-pipeline when the previous process stopped.
func resumeAutoProgression(ctx context.Context, transferRepo portsrepo.TransferReader, scheduler portssvc.ProgressionScheduler, logger *slog.Logger) {
	transfers, err := transferRepo.ListTransfers(ctx, portsrepo.TransferFilter{}, 10_000)
	if err != nil {
		logger.Error("Failed to list transfers for auto-progression resume", slog.String("error", err.Error()))
		return
	}

	resumed := 0
	for i := range transfers {
		t := &transfers[i]
		if t.Status.IsTerminal() || !t.AutoProgression {
			continue
		}
		scheduler.Start(t.TransferID)
		resumed++
	}
	if resumed > 0 {
		logger.Info("Resumed auto-progression tasks", slog.Int("count", resumed))
	}
}
