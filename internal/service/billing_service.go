package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-manager/internal/config"
	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/internal/repository"
	customError "github.com/segyhp/loan-manager/pkg/errors"
	"github.com/segyhp/loan-manager/pkg/events"
	"github.com/segyhp/loan-manager/pkg/utils"
)

// PaymentEvent is the body published when a payment is recorded
type PaymentEvent struct {
	PaymentID  uuid.UUID       `json:"payment_id"`
	LoanID     uuid.UUID       `json:"loan_id"`
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
	LoanStatus string          `json:"loan_status"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type BillingService struct {
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	cache       repository.LoanCache
	notifier    *NotificationService
	publisher   events.Publisher
	metrics     Metrics
	config      *config.Config
	logger      *slog.Logger
	now         func() time.Time
}

func NewBillingService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	cache repository.LoanCache,
	notifier *NotificationService,
	publisher events.Publisher,
	metrics Metrics,
	config *config.Config,
	logger *slog.Logger,
) *BillingService {
	return &BillingService{
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		cache:       cache,
		notifier:    notifier,
		publisher:   publisher,
		metrics:     metrics,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// GetLoan returns a loan, served from the cache when possible
func (s *BillingService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	cached, err := s.cache.Get(ctx, loanID)
	if err != nil {
		s.logger.Warn("loan cache read failed", "loan_id", loanID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, loan); err != nil {
		s.logger.Warn("loan cache write failed", "loan_id", loanID, "error", err)
	}
	return loan, nil
}

// GetLoanDetails returns the loan with its schedule and the next open installment
func (s *BillingService) GetLoanDetails(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.GetSchedule(ctx, loanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	details := &domain.LoanDetailsResponse{
		Loan:               loan,
		Schedule:           schedules,
		CurrentInstallment: utils.GetCurrentInstallment(loan.StartDate, now),
	}
	for _, schedule := range schedules {
		if !schedule.IsOpen() {
			continue
		}
		if details.NextDue == nil {
			details.NextDue = schedule
		}
		// includes installments the overdue job has not flagged yet
		if utils.IsDateOverdue(schedule.DueDate, now) {
			details.OverdueInstallments++
		}
	}

	return details, nil
}

func (s *BillingService) ListLoans(ctx context.Context, userID string) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// GetSchedule returns the repayment schedule for a loan
func (s *BillingService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanSchedule, error) {
	schedules, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(schedules) == 0 {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	return schedules, nil
}

// GetOutstanding calculates the outstanding balance from the recorded payments
func (s *BillingService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	totalPaid, err := s.PaymentRepo.GetTotalPaid(ctx, loanID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}

	// Outstanding = Total Payable (including interest) - Total Payments
	outstanding := utils.MaxDecimal(loan.TotalPayable.Sub(totalPaid), decimal.Zero)
	return outstanding.Round(2), nil
}

// MakePayment records a repayment against an active loan. Installments whose
// cumulative amount is covered by everything paid so far are marked paid.
func (s *BillingService) MakePayment(ctx context.Context, loanID uuid.UUID, req *domain.MakePaymentRequest) (*domain.MakePaymentResponse, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanAlreadyClosed(loanID.String())
	}

	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(req.Amount.String())
	}
	if amount.GreaterThan(loan.RemainingAmount) {
		return nil, customError.WrapPaymentExceedsBalance(amount.StringFixed(2), loan.RemainingAmount.StringFixed(2))
	}

	schedules, err := s.LoanRepo.GetScheduleByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	previous := loan.RemainingAmount
	remaining := utils.MaxDecimal(previous.Sub(amount), decimal.Zero).Round(2)
	status := domain.LoanStatusActive
	if remaining.IsZero() {
		status = domain.LoanStatusPaid
	}

	now := s.now()
	payment := &domain.Payment{
		ID:              uuid.New(),
		LoanID:          loan.ID,
		UserID:          loan.UserID,
		Amount:          amount,
		PaymentMethod:   req.PaymentMethod,
		Reference:       req.Reference,
		Status:          domain.PaymentStatusCompleted,
		PreviousBalance: previous,
		NewBalance:      remaining,
		CreatedAt:       now,
	}

	updated := *loan
	updated.RemainingAmount = remaining
	updated.Status = status
	updated.LastPaymentDate = &now
	updated.UpdatedAt = now

	paid := coveredInstallments(schedules, updated.AmountPaid(), status == domain.LoanStatusPaid)

	if err := s.LoanRepo.RecordPayment(ctx, payment, &updated, paid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapBalanceChanged(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.cache.Delete(ctx, loanID); err != nil {
		s.logger.Warn("loan cache eviction failed", "loan_id", loanID, "error", err)
	}

	s.metrics.ObservePayment(status)
	s.logger.Info("payment recorded",
		"loan_id", loanID,
		"payment_id", payment.ID,
		"amount", amount.StringFixed(2),
		"remaining", remaining.StringFixed(2),
		"installments_paid", len(paid),
	)

	s.publish(ctx, events.PaymentCompleted, PaymentEvent{
		PaymentID:  payment.ID,
		LoanID:     loan.ID,
		UserID:     loan.UserID,
		Amount:     amount,
		NewBalance: remaining,
		LoanStatus: status,
		OccurredAt: now,
	})

	if status == domain.LoanStatusPaid {
		if err := s.notifier.Notify(ctx, loan.UserID, domain.NotificationKindPaidOff, fmt.Sprintf(
			"Congratulations! Your loan of %s has been fully repaid.",
			utils.FormatCurrency(s.config.Business.CurrencySymbol, loan.Principal),
		)); err != nil {
			s.logger.Warn("failed to store notification", "user_id", loan.UserID, "error", err)
		}
		s.publish(ctx, events.LoanPaidOff, updated)
	}

	return &domain.MakePaymentResponse{Payment: payment, Loan: &updated}, nil
}

func (s *BillingService) ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.loadLoan(ctx, loanID); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// MarkOverdue flags every pending installment whose due date has passed
func (s *BillingService) MarkOverdue(ctx context.Context) (int64, error) {
	now := s.now().In(s.config.Scheduler.Location())

	count, err := s.LoanRepo.MarkOverdue(ctx, utils.StartOfDay(now))
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	s.logger.Info("overdue installments marked", "count", count)
	return count, nil
}

// SendPaymentReminders notifies borrowers of installments due exactly
// ReminderDays from today. The job runs daily, so each installment gets one
// reminder.
func (s *BillingService) SendPaymentReminders(ctx context.Context) (int, error) {
	now := s.now().In(s.config.Scheduler.Location())
	day := utils.StartOfDay(now).AddDate(0, 0, s.config.Scheduler.ReminderDays)

	reminders, err := s.LoanRepo.ListDueBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	sent := 0
	for _, reminder := range reminders {
		if !utils.IsDueOn(reminder.DueDate, day) {
			continue
		}

		message := fmt.Sprintf("Installment %d of %s on your loan is due on %s.",
			reminder.InstallmentNumber,
			utils.FormatCurrency(s.config.Business.CurrencySymbol, reminder.DueAmount),
			reminder.DueDate.Format("2006-01-02"),
		)
		if err := s.notifier.Notify(ctx, reminder.UserID, domain.NotificationKindReminder, message); err != nil {
			s.logger.Warn("failed to send payment reminder", "loan_id", reminder.LoanID, "error", err)
			continue
		}
		sent++
	}

	s.logger.Info("payment reminders sent", "sent", sent, "due", len(reminders))
	return sent, nil
}

func (s *BillingService) loadLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *BillingService) publish(ctx context.Context, routingKey string, body interface{}) {
	if err := s.publisher.Publish(ctx, routingKey, body); err != nil {
		s.logger.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}

// coveredInstallments returns the open installments settled by totalPaid,
// walking the schedule in order. A paid-off loan settles all of them.
func coveredInstallments(schedules []*domain.LoanSchedule, totalPaid decimal.Decimal, paidOff bool) []int {
	var covered []int
	cumulative := decimal.Zero
	for _, schedule := range schedules {
		cumulative = cumulative.Add(schedule.DueAmount)
		if !schedule.IsOpen() {
			continue
		}
		if paidOff || !cumulative.GreaterThan(totalPaid) {
			covered = append(covered, schedule.InstallmentNumber)
		}
	}
	return covered
}
