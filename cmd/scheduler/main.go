package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-manager/internal/config"
	"github.com/segyhp/loan-manager/internal/repository"
	"github.com/segyhp/loan-manager/internal/scheduler"
	"github.com/segyhp/loan-manager/internal/service"
	"github.com/segyhp/loan-manager/pkg/events"
	"github.com/segyhp/loan-manager/pkg/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting loan scheduler", "timezone", cfg.Scheduler.Timezone)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	publisher := events.Connect(cfg.Broker.URL, cfg.Broker.Exchange, logger)
	defer publisher.Close()

	notificationService := service.NewNotificationService(repository.NewNotificationRepository(db), logger)
	billingService := service.NewBillingService(
		repository.NewLoanRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewRedisLoanCache(redisClient, cfg.Redis.CacheTTL),
		notificationService,
		publisher,
		service.NopMetrics{},
		cfg,
		logger,
	)

	s := scheduler.New(billingService, cfg.Scheduler, logger)
	if err := s.Start(); err != nil {
		logger.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}
	logger.Info("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-s.Stop().Done()
	logger.Info("scheduler stopped")
}
