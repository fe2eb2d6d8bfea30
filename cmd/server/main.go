package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-manager/internal/config"
	"github.com/segyhp/loan-manager/internal/handler"
	"github.com/segyhp/loan-manager/internal/repository"
	"github.com/segyhp/loan-manager/internal/service"
	"github.com/segyhp/loan-manager/pkg/events"
	"github.com/segyhp/loan-manager/pkg/logging"
	"github.com/segyhp/loan-manager/pkg/metrics"
	"github.com/segyhp/loan-manager/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	publisher := events.Connect(cfg.Broker.URL, cfg.Broker.Exchange, logger)
	defer publisher.Close()

	m := metrics.New()

	// Initialize repositories
	applicationRepo := repository.NewApplicationRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	loanCache := repository.NewRedisLoanCache(redisClient, cfg.Redis.CacheTTL)

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, logger)
	calculatorService := service.NewCalculatorService(cfg.Business.Policy(), cfg.Business.CurrencySymbol, m, logger)
	applicationService := service.NewApplicationService(applicationRepo, loanRepo, notificationService, publisher, m, cfg, logger)
	billingService := service.NewBillingService(loanRepo, paymentRepo, loanCache, notificationService, publisher, m, cfg, logger)

	handlers := &handler.Handlers{
		Calculator:    handler.NewCalculatorHandler(calculatorService),
		Applications:  handler.NewApplicationHandler(applicationService),
		Billing:       handler.NewBillingHandler(billingService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Health:        handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
		Metrics:       m.Handler(),
	}

	// Setup routes
	router := setupRoutes(cfg, handlers, m, logger)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// setupRoutes wraps the router in CORS so preflight requests are answered
// before mux method matching rejects them
func setupRoutes(cfg *config.Config, handlers *handler.Handlers, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()

	router.Use(response.LoggingMiddleware(logger))
	router.Use(m.Middleware)

	handlers.Register(router)

	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})(router)
}
