package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/pkg/loanmath"
)

type MockCalculatorService struct {
	mock.Mock
}

func (m *MockCalculatorService) CalculateEMI(req domain.EMIRequest) (*domain.EMIResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EMIResponse), args.Error(1)
}

func (m *MockCalculatorService) CheckEligibility(req domain.EligibilityRequest) (*loanmath.EligibilityResult, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loanmath.EligibilityResult), args.Error(1)
}

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Submit(ctx context.Context, req *domain.SubmitApplicationRequest) (*domain.LoanApplication, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationService) Get(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationService) List(ctx context.Context, status string) ([]*domain.LoanApplication, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationService) ListByUser(ctx context.Context, userID string) ([]*domain.LoanApplication, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationService) Approve(ctx context.Context, id uuid.UUID) (*domain.ApproveApplicationResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApproveApplicationResponse), args.Error(1)
}

func (m *MockApplicationService) Decline(ctx context.Context, id uuid.UUID, req *domain.DeclineApplicationRequest) (*domain.LoanApplication, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanApplication), args.Error(1)
}

func (m *MockApplicationService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) GetLoanDetails(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanDetailsResponse), args.Error(1)
}

func (m *MockBillingService) ListLoans(ctx context.Context, userID string) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockBillingService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanSchedule, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanSchedule), args.Error(1)
}

func (m *MockBillingService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBillingService) MakePayment(ctx context.Context, loanID uuid.UUID, req *domain.MakePaymentRequest) (*domain.MakePaymentResponse, error) {
	args := m.Called(ctx, loanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MakePaymentResponse), args.Error(1)
}

func (m *MockBillingService) ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
