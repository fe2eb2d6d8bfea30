package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/internal/mocks"
	"github.com/segyhp/loan-manager/internal/repository"
	customError "github.com/segyhp/loan-manager/pkg/errors"
	"github.com/segyhp/loan-manager/pkg/events"
)

type billingFixture struct {
	loans         *mocks.MockLoanRepository
	payments      *mocks.MockPaymentRepository
	cache         *mocks.MockLoanCache
	notifications *mocks.MockNotificationRepository
	publisher     *mocks.MockPublisher
	metrics       *recordingMetrics
	service       *BillingService
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		loans:         &mocks.MockLoanRepository{},
		payments:      &mocks.MockPaymentRepository{},
		cache:         &mocks.MockLoanCache{},
		notifications: &mocks.MockNotificationRepository{},
		publisher:     &mocks.MockPublisher{},
		metrics:       &recordingMetrics{},
	}
	f.service = NewBillingService(
		f.loans,
		f.payments,
		f.cache,
		NewNotificationService(f.notifications, testLogger()),
		f.publisher,
		f.metrics,
		testConfig(),
		testLogger(),
	)
	f.service.now = func() time.Time { return fixedNow }
	return f
}

// activeLoan is 10000 at 12% over a year: 12 installments of 888.49
func activeLoan() *domain.Loan {
	return &domain.Loan{
		ID:              uuid.New(),
		UserID:          "user-1",
		Principal:       decimal.NewFromInt(10000),
		InterestRate:    decimal.NewFromInt(12),
		Installments:    12,
		MonthlyPayment:  decimal.RequireFromString("888.49"),
		TotalPayable:    decimal.RequireFromString("10661.88"),
		RemainingAmount: decimal.RequireFromString("10661.88"),
		Status:          domain.LoanStatusActive,
		StartDate:       time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
	}
}

func scheduleFor(loan *domain.Loan) []*domain.LoanSchedule {
	schedules := make([]*domain.LoanSchedule, 0, loan.Installments)
	for i := 1; i <= loan.Installments; i++ {
		schedules = append(schedules, &domain.LoanSchedule{
			LoanID:            loan.ID,
			InstallmentNumber: i,
			DueAmount:         loan.MonthlyPayment,
			DueDate:           loan.StartDate.AddDate(0, i, 0),
			Status:            domain.ScheduleStatusPending,
		})
	}
	return schedules
}

func TestGetLoan_CacheHit(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()

	f.cache.On("Get", mock.Anything, loan.ID).Return(loan, nil).Once()

	got, err := f.service.GetLoan(context.Background(), loan.ID)

	require.NoError(t, err)
	assert.Equal(t, loan, got)
	f.loans.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetLoan_CacheMissFillsCache(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()

	f.cache.On("Get", mock.Anything, loan.ID).Return(nil, nil).Once()
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	f.cache.On("Set", mock.Anything, loan).Return(nil).Once()

	got, err := f.service.GetLoan(context.Background(), loan.ID)

	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
	f.cache.AssertExpectations(t)
	f.loans.AssertExpectations(t)
}

func TestGetLoan_CacheErrorFallsBackToDatabase(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()

	f.cache.On("Get", mock.Anything, loan.ID).Return(nil, errors.New("dial tcp: connection refused")).Once()
	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	f.cache.On("Set", mock.Anything, loan).Return(errors.New("dial tcp: connection refused")).Once()

	got, err := f.service.GetLoan(context.Background(), loan.ID)

	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)
}

func TestGetLoan_NotFound(t *testing.T) {
	f := newBillingFixture()
	id := uuid.New()

	f.cache.On("Get", mock.Anything, id).Return(nil, nil).Once()
	f.loans.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

	_, err := f.service.GetLoan(context.Background(), id)

	assert.True(t, errors.Is(err, customError.ErrLoanNotFound))
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestGetLoanDetails(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()
	schedules := scheduleFor(loan)
	schedules[0].Status = domain.ScheduleStatusPaid
	schedules[1].Status = domain.ScheduleStatusOverdue

	f.cache.On("Get", mock.Anything, loan.ID).Return(loan, nil).Once()
	f.loans.On("GetScheduleByLoanID", mock.Anything, loan.ID).Return(schedules, nil).Once()

	details, err := f.service.GetLoanDetails(context.Background(), loan.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, details.CurrentInstallment) // 2025-03-15 is in the third month
	assert.Equal(t, 1, details.OverdueInstallments) // installment 2 fell due on 2025-03-10
	require.NotNil(t, details.NextDue)
	assert.Equal(t, 2, details.NextDue.InstallmentNumber)
	assert.Len(t, details.Schedule, 12)
}

func TestGetOutstanding(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()

	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	f.payments.On("GetTotalPaid", mock.Anything, loan.ID).Return(decimal.RequireFromString("1776.98"), nil).Once()

	outstanding, err := f.service.GetOutstanding(context.Background(), loan.ID)

	require.NoError(t, err)
	assert.Equal(t, "8884.90", outstanding.StringFixed(2)) // 10661.88 - 2 * 888.49
}

func TestMakePayment_PartialCoversInstallments(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()

	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	f.loans.On("GetScheduleByLoanID", mock.Anything, loan.ID).Return(scheduleFor(loan), nil).Once()
	f.loans.On("RecordPayment", mock.Anything,
		mock.MatchedBy(func(p *domain.Payment) bool {
			return p.Amount.StringFixed(2) == "2000.00" &&
				p.PreviousBalance.StringFixed(2) == "10661.88" &&
				p.NewBalance.StringFixed(2) == "8661.88" &&
				p.Status == domain.PaymentStatusCompleted
		}),
		mock.MatchedBy(func(l *domain.Loan) bool {
			return l.RemainingAmount.StringFixed(2) == "8661.88" && l.Status == domain.LoanStatusActive
		}),
		[]int{1, 2},
	).Return(nil).Once()
	f.cache.On("Delete", mock.Anything, loan.ID).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, events.PaymentCompleted, mock.Anything).Return(nil).Once()

	resp, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{
		Amount:        decimal.NewFromInt(2000),
		PaymentMethod: domain.PaymentMethodMobileMoney,
		Reference:     "MM-0001",
	})

	require.NoError(t, err)
	assert.Equal(t, "8661.88", resp.Loan.RemainingAmount.StringFixed(2))
	assert.Equal(t, "10661.88", loan.RemainingAmount.StringFixed(2), "stored loan must not be mutated")
	assert.Equal(t, []string{domain.LoanStatusActive}, f.metrics.payments)

	f.loans.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestMakePayment_PaysOffLoan(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()
	loan.RemainingAmount = decimal.RequireFromString("888.49")
	schedules := scheduleFor(loan)
	for _, s := range schedules[:11] {
		s.Status = domain.ScheduleStatusPaid
	}

	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	f.loans.On("GetScheduleByLoanID", mock.Anything, loan.ID).Return(schedules, nil).Once()
	f.loans.On("RecordPayment", mock.Anything, mock.Anything,
		mock.MatchedBy(func(l *domain.Loan) bool {
			return l.RemainingAmount.IsZero() && l.Status == domain.LoanStatusPaid && l.LastPaymentDate != nil
		}),
		[]int{12},
	).Return(nil).Once()
	f.cache.On("Delete", mock.Anything, loan.ID).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, events.PaymentCompleted, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", mock.Anything, events.LoanPaidOff, mock.Anything).Return(nil).Once()
	f.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.Kind == domain.NotificationKindPaidOff
	})).Return(nil).Once()

	resp, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{
		Amount:        decimal.RequireFromString("888.49"),
		PaymentMethod: domain.PaymentMethodBankTransfer,
		Reference:     "BT-12",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.LoanStatusPaid, resp.Loan.Status)
	assert.Equal(t, []string{domain.LoanStatusPaid}, f.metrics.payments)
	f.publisher.AssertExpectations(t)
	f.notifications.AssertExpectations(t)
}

func TestMakePayment_Rejections(t *testing.T) {
	closed := activeLoan()
	closed.Status = domain.LoanStatusPaid
	closed.RemainingAmount = decimal.Zero

	tests := []struct {
		name    string
		loan    *domain.Loan
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "closed loan", loan: closed, amount: decimal.NewFromInt(100), wantErr: customError.ErrLoanAlreadyClosed},
		{name: "zero amount", loan: activeLoan(), amount: decimal.Zero, wantErr: customError.ErrInvalidPaymentAmount},
		{name: "rounds to zero", loan: activeLoan(), amount: decimal.RequireFromString("0.001"), wantErr: customError.ErrInvalidPaymentAmount},
		{name: "exceeds balance", loan: activeLoan(), amount: decimal.RequireFromString("10661.89"), wantErr: customError.ErrPaymentExceedsBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture()
			f.loans.On("GetByID", mock.Anything, tt.loan.ID).Return(tt.loan, nil).Once()

			_, err := f.service.MakePayment(context.Background(), tt.loan.ID, &domain.MakePaymentRequest{
				Amount:        tt.amount,
				PaymentMethod: domain.PaymentMethodCashDeposit,
				Reference:     "REF",
			})

			assert.True(t, errors.Is(err, tt.wantErr))
			f.loans.AssertNotCalled(t, "RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMakePayment_ConcurrentBalanceChange(t *testing.T) {
	f := newBillingFixture()
	loan := activeLoan()

	f.loans.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	f.loans.On("GetScheduleByLoanID", mock.Anything, loan.ID).Return(scheduleFor(loan), nil).Once()
	f.loans.On("RecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(repository.ErrNotFound).Once()

	_, err := f.service.MakePayment(context.Background(), loan.ID, &domain.MakePaymentRequest{
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: domain.PaymentMethodCashDeposit,
		Reference:     "REF",
	})

	assert.True(t, errors.Is(err, customError.ErrBalanceChanged))
	assert.Equal(t, 409, customError.HTTPStatus(err))
	f.cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCoveredInstallments(t *testing.T) {
	loan := activeLoan()
	schedules := scheduleFor(loan)
	schedules[0].Status = domain.ScheduleStatusPaid

	assert.Empty(t, coveredInstallments(schedules, decimal.RequireFromString("888.49"), false))
	assert.Equal(t, []int{2}, coveredInstallments(schedules, decimal.RequireFromString("1776.98"), false))
	assert.Equal(t, []int{2}, coveredInstallments(schedules, decimal.RequireFromString("2665.46"), false))
	assert.Len(t, coveredInstallments(schedules, decimal.RequireFromString("1000"), true), 11)
}

func TestListPayments_UnknownLoan(t *testing.T) {
	f := newBillingFixture()
	id := uuid.New()

	f.loans.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

	_, err := f.service.ListPayments(context.Background(), id)

	assert.Equal(t, 404, customError.HTTPStatus(err))
	f.payments.AssertNotCalled(t, "GetByLoanID", mock.Anything, mock.Anything)
}

func TestMarkOverdue(t *testing.T) {
	f := newBillingFixture()
	midnight := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	f.loans.On("MarkOverdue", mock.Anything, midnight).Return(int64(4), nil).Once()

	count, err := f.service.MarkOverdue(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	f.loans.AssertExpectations(t)
}

func TestSendPaymentReminders(t *testing.T) {
	f := newBillingFixture()
	day := time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC)
	loanID := uuid.New()

	reminders := []*domain.DueReminder{
		{LoanID: loanID, UserID: "user-1", InstallmentNumber: 3, DueAmount: decimal.RequireFromString("888.49"), DueDate: day},
		{LoanID: uuid.New(), UserID: "user-2", InstallmentNumber: 1, DueAmount: decimal.NewFromInt(100), DueDate: day.Add(9 * time.Hour)},
		{LoanID: uuid.New(), UserID: "user-3", InstallmentNumber: 2, DueAmount: decimal.NewFromInt(100), DueDate: day.AddDate(0, 0, -1)},
	}

	f.loans.On("ListDueBetween", mock.Anything, day, day.AddDate(0, 0, 1)).Return(reminders, nil).Once()
	f.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "user-1" &&
			n.Kind == domain.NotificationKindReminder &&
			n.Message == "Installment 3 of E888.49 on your loan is due on 2025-03-18."
	})).Return(nil).Once()
	f.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "user-2"
	})).Return(errors.New("insert failed")).Once()

	sent, err := f.service.SendPaymentReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	f.notifications.AssertExpectations(t)
	f.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "user-3"
	}))
}

func TestSendPaymentReminders_DailyWindowsDoNotOverlap(t *testing.T) {
	f := newBillingFixture()
	var windows [][2]time.Time
	f.loans.On("ListDueBetween", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			windows = append(windows, [2]time.Time{args.Get(1).(time.Time), args.Get(2).(time.Time)})
		}).
		Return([]*domain.DueReminder{}, nil)

	for i := 0; i < 3; i++ {
		now := fixedNow.AddDate(0, 0, i)
		f.service.now = func() time.Time { return now }
		_, err := f.service.SendPaymentReminders(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, windows, 3)
	for i := 1; i < len(windows); i++ {
		assert.True(t, windows[i][0].Equal(windows[i-1][1]), "window %d should start where the previous one ended", i)
	}
	assert.Equal(t, 24*time.Hour, windows[0][1].Sub(windows[0][0]))
}
