package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-manager/internal/config"
	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/internal/repository"
	customError "github.com/segyhp/loan-manager/pkg/errors"
	"github.com/segyhp/loan-manager/pkg/events"
	"github.com/segyhp/loan-manager/pkg/loanmath"
	"github.com/segyhp/loan-manager/pkg/utils"
)

// ApplicationEvent is the body published for application lifecycle changes
type ApplicationEvent struct {
	ApplicationID uuid.UUID       `json:"application_id"`
	UserID        string          `json:"user_id"`
	Status        string          `json:"status"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	LoanID        *uuid.UUID      `json:"loan_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type ApplicationService struct {
	apps      repository.ApplicationRepository
	loans     repository.LoanRepository
	notifier  *NotificationService
	publisher events.Publisher
	metrics   Metrics
	config    *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewApplicationService(
	apps repository.ApplicationRepository,
	loans repository.LoanRepository,
	notifier *NotificationService,
	publisher events.Publisher,
	metrics Metrics,
	config *config.Config,
	logger *slog.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:      apps,
		loans:     loans,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit stores a new pending application
func (s *ApplicationService) Submit(ctx context.Context, req *domain.SubmitApplicationRequest) (*domain.LoanApplication, error) {
	tenure := req.TenureYears
	if tenure == 0 {
		tenure = s.config.Business.DefaultTenureYears
	}
	months := tenure * 12
	if math.Abs(months-math.Round(months)) > 1e-9 {
		return nil, customError.WrapInvalidInput(&loanmath.InputError{
			Field:  "tenure_years",
			Reason: "must cover a whole number of months",
		})
	}

	now := s.now()
	app := &domain.LoanApplication{
		ID:                  uuid.New(),
		UserID:              req.UserID,
		FullName:            req.FullName,
		IDNumber:            req.IDNumber,
		LoanAmount:          req.LoanAmount.Round(2),
		TenureYears:         tenure,
		Purpose:             req.Purpose,
		EmploymentStatus:    req.EmploymentStatus,
		MonthlyIncome:       req.MonthlyIncome.Round(2),
		Address:             req.Address,
		PhoneNumber:         req.PhoneNumber,
		IDDocumentURL:       req.IDDocumentURL,
		ProofOfResidenceURL: req.ProofOfResidenceURL,
		BankStatementURL:    req.BankStatementURL,
		Status:              domain.ApplicationStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.apps.Create(ctx, app); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan application submitted", "application_id", app.ID, "user_id", app.UserID)
	s.publish(ctx, events.ApplicationSubmitted, app)

	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapApplicationNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return app, nil
}

// List returns applications, all of them when status is empty
func (s *ApplicationService) List(ctx context.Context, status string) ([]*domain.LoanApplication, error) {
	switch status {
	case "", domain.ApplicationStatusPending, domain.ApplicationStatusApproved, domain.ApplicationStatusDeclined:
	default:
		return nil, customError.WrapInvalidInput(&loanmath.InputError{Field: "status", Reason: "unknown status " + status})
	}

	apps, err := s.apps.List(ctx, status)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return apps, nil
}

func (s *ApplicationService) ListByUser(ctx context.Context, userID string) ([]*domain.LoanApplication, error) {
	apps, err := s.apps.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return apps, nil
}

// Approve turns a pending application into an active loan repaid in equal
// monthly installments at the default interest rate
func (s *ApplicationService) Approve(ctx context.Context, id uuid.UUID) (*domain.ApproveApplicationResponse, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationStatusPending {
		return nil, customError.WrapApplicationNotPending(id.String(), app.Status)
	}

	rate := s.config.GetDefaultInterestRate()
	amortization, err := loanmath.ComputeAmortization(loanmath.LoanQuery{
		Principal:                 app.LoanAmount.InexactFloat64(),
		AnnualInterestRatePercent: rate,
		TenureYears:               app.TenureYears,
	})
	if err != nil {
		return nil, customError.WrapInvalidInput(err)
	}

	now := s.now()
	startDate := utils.StartOfDay(now)
	installments := int(math.Round(amortization.Installments))

	loan := &domain.Loan{
		ID:              uuid.New(),
		ApplicationID:   app.ID,
		UserID:          app.UserID,
		Principal:       app.LoanAmount,
		InterestRate:    decimal.NewFromFloat(rate),
		Installments:    installments,
		MonthlyPayment:  amortization.MonthlyPayment,
		TotalPayable:    amortization.TotalPayment,
		RemainingAmount: amortization.TotalPayment,
		Status:          domain.LoanStatusActive,
		StartDate:       startDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	schedules := make([]*domain.LoanSchedule, 0, installments)
	for i := 1; i <= installments; i++ {
		schedules = append(schedules, &domain.LoanSchedule{
			ID:                uuid.New(),
			LoanID:            loan.ID,
			InstallmentNumber: i,
			DueAmount:         amortization.MonthlyPayment,
			DueDate:           utils.CalculateDueDate(startDate, i),
			Status:            domain.ScheduleStatusPending,
			CreatedAt:         now,
		})
	}

	if err := s.loans.CreateFromApplication(ctx, app.ID, loan, schedules); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Another reviewer decided the application first
			return nil, customError.WrapApplicationNotPending(id.String(), "no longer pending")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	app.Status = domain.ApplicationStatusApproved
	app.LoanID = uuid.NullUUID{UUID: loan.ID, Valid: true}
	app.UpdatedAt = now

	s.metrics.ObserveApplicationDecision(app.Status)
	s.logger.Info("loan application approved",
		"application_id", app.ID,
		"loan_id", loan.ID,
		"monthly_payment", loan.MonthlyPayment.String(),
		"installments", installments,
	)

	s.notify(ctx, app.UserID, domain.NotificationKindApproved, fmt.Sprintf(
		"Your loan application for %s has been approved. Your monthly installment is %s.",
		utils.FormatCurrency(s.config.Business.CurrencySymbol, app.LoanAmount),
		utils.FormatCurrency(s.config.Business.CurrencySymbol, loan.MonthlyPayment),
	))
	s.publish(ctx, events.ApplicationApproved, app)

	return &domain.ApproveApplicationResponse{
		Application: app,
		Loan:        loan,
		Schedule:    schedules,
	}, nil
}

// Decline rejects a pending application with a reason for the borrower
func (s *ApplicationService) Decline(ctx context.Context, id uuid.UUID, req *domain.DeclineApplicationRequest) (*domain.LoanApplication, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationStatusPending {
		return nil, customError.WrapApplicationNotPending(id.String(), app.Status)
	}

	if err := s.apps.Decline(ctx, id, req.DeclineMessage, req.MissingDetails); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapApplicationNotPending(id.String(), "no longer pending")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	app.Status = domain.ApplicationStatusDeclined
	app.DeclineMessage = req.DeclineMessage
	app.MissingDetails = req.MissingDetails
	app.UpdatedAt = s.now()

	s.metrics.ObserveApplicationDecision(app.Status)
	s.logger.Info("loan application declined", "application_id", app.ID)

	s.notify(ctx, app.UserID, domain.NotificationKindDeclined, fmt.Sprintf(
		"Your loan application for %s has been declined.",
		utils.FormatCurrency(s.config.Business.CurrencySymbol, app.LoanAmount),
	))
	s.publish(ctx, events.ApplicationDeclined, app)

	return app, nil
}

// Delete removes an application that never became a loan
func (s *ApplicationService) Delete(ctx context.Context, id uuid.UUID) error {
	app, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if app.Status == domain.ApplicationStatusApproved {
		return customError.WrapApplicationLocked(id.String(), app.Status)
	}

	if err := s.apps.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.deleteRejected(ctx, id)
		}
		return customError.WrapDatabaseError(err)
	}

	s.logger.Info("loan application deleted", "application_id", id)
	return nil
}

// deleteRejected explains a delete that matched no row: the application was
// removed or approved after it was read.
func (s *ApplicationService) deleteRejected(ctx context.Context, id uuid.UUID) error {
	app, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return customError.WrapApplicationLocked(id.String(), app.Status)
}

// notify and publish are best effort: the decision is already committed.
func (s *ApplicationService) notify(ctx context.Context, userID, kind, message string) {
	if err := s.notifier.Notify(ctx, userID, kind, message); err != nil {
		s.logger.Warn("failed to store notification", "user_id", userID, "kind", kind, "error", err)
	}
}

func (s *ApplicationService) publish(ctx context.Context, routingKey string, app *domain.LoanApplication) {
	event := ApplicationEvent{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Status:        app.Status,
		LoanAmount:    app.LoanAmount,
		OccurredAt:    app.UpdatedAt,
	}
	if app.LoanID.Valid {
		event.LoanID = &app.LoanID.UUID
	}

	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.logger.Warn("failed to publish event", "routing_key", routingKey, "error", err)
	}
}
