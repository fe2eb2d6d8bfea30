package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/loan-manager/internal/config"
)

const jobTimeout = 5 * time.Minute

// Jobs is the billing work run on a schedule. *service.BillingService satisfies it.
type Jobs interface {
	MarkOverdue(ctx context.Context) (int64, error)
	SendPaymentReminders(ctx context.Context) (int, error)
}

// Scheduler runs the billing jobs on their cron schedules
type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	config config.SchedulerConfig
	logger *slog.Logger
}

func New(jobs Jobs, cfg config.SchedulerConfig, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.Recover(cronLogger)),
	)

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		config: cfg,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron scheduler
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.OverdueSchedule, s.UpdateOverduePayments); err != nil {
		return fmt.Errorf("schedule overdue job: %w", err)
	}
	s.logger.Info("scheduled overdue payment job", "schedule", s.config.OverdueSchedule)

	if _, err := s.cron.AddFunc(s.config.ReminderSchedule, s.SendPaymentReminders); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	s.logger.Info("scheduled payment reminder job", "schedule", s.config.ReminderSchedule, "window_days", s.config.ReminderDays)

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done when running jobs finish
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// UpdateOverduePayments flags installments whose due date has passed
func (s *Scheduler) UpdateOverduePayments() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	count, err := s.jobs.MarkOverdue(ctx)
	if err != nil {
		s.logger.Error("overdue payment job failed", "error", err)
		return
	}
	s.logger.Info("overdue payment job finished", "marked", count, "duration_ms", time.Since(start).Milliseconds())
}

// SendPaymentReminders notifies borrowers of installments due soon
func (s *Scheduler) SendPaymentReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	sent, err := s.jobs.SendPaymentReminders(ctx)
	if err != nil {
		s.logger.Error("payment reminder job failed", "error", err)
		return
	}
	s.logger.Info("payment reminder job finished", "sent", sent, "duration_ms", time.Since(start).Milliseconds())
}
