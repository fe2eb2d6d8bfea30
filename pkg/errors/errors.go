package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/segyhp/loan-manager/pkg/loanmath"
)

// Domain errors
var (
	ErrApplicationNotFound   = errors.New("loan application not found")
	ErrApplicationNotPending = errors.New("loan application is not pending")
	ErrApplicationLocked     = errors.New("loan application cannot be deleted")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanAlreadyClosed     = errors.New("loan is already closed")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrPaymentExceedsBalance = errors.New("amount cannot exceed remaining balance")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrBalanceChanged        = errors.New("loan balance changed during payment")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeMissingFields         = "MISSING_FIELDS"
	ErrCodeApplicationNotFound   = "APPLICATION_NOT_FOUND"
	ErrCodeApplicationNotPending = "APPLICATION_NOT_PENDING"
	ErrCodeApplicationLocked     = "APPLICATION_LOCKED"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyClosed     = "LOAN_ALREADY_CLOSED"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodePaymentExceedsBalance = "PAYMENT_EXCEEDS_BALANCE"
	ErrCodeNotificationNotFound  = "NOTIFICATION_NOT_FOUND"
	ErrCodeBalanceChanged        = "BALANCE_CHANGED"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
)

// WrapInvalidInput turns a loanmath validation failure into a business error.
// Eligibility presence failures keep their own code so clients can prompt for
// the missing fields.
func WrapInvalidInput(err error) *BusinessError {
	if errors.Is(err, loanmath.ErrMissingFields) {
		return NewBusinessError(ErrCodeMissingFields, "Please fill all required fields", err)
	}
	return NewBusinessError(ErrCodeInvalidInput, "Invalid input", err)
}

func WrapApplicationNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Loan application with ID %s not found", id),
		ErrApplicationNotFound,
	)
}

func WrapApplicationNotPending(id, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotPending,
		fmt.Sprintf("Loan application with ID %s is %s", id, status),
		ErrApplicationNotPending,
	)
}

func WrapApplicationLocked(id, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationLocked,
		fmt.Sprintf("Loan application with ID %s is %s and cannot be deleted", id, status),
		ErrApplicationLocked,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyClosed(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyClosed,
		fmt.Sprintf("Loan with ID %s is already closed", loanID),
		ErrLoanAlreadyClosed,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapPaymentExceedsBalance(amount, remaining string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentExceedsBalance,
		fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount, remaining),
		ErrPaymentExceedsBalance,
	)
}

func WrapBalanceChanged(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeBalanceChanged,
		fmt.Sprintf("Balance of loan %s changed while the payment was processed, please retry", loanID),
		ErrBalanceChanged,
	)
}

func WrapNotificationNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotificationNotFound,
		fmt.Sprintf("Notification with ID %s not found", id),
		ErrNotificationNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

// HTTPStatus maps an error to the status code a handler should answer with.
func HTTPStatus(err error) int {
	var be *BusinessError
	if !errors.As(err, &be) {
		if errors.Is(err, loanmath.ErrMalformedInput) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	}

	switch be.Code {
	case ErrCodeInvalidInput, ErrCodeMissingFields, ErrCodeInvalidPaymentAmount, ErrCodePaymentExceedsBalance:
		return http.StatusUnprocessableEntity
	case ErrCodeApplicationNotFound, ErrCodeLoanNotFound, ErrCodeNotificationNotFound:
		return http.StatusNotFound
	case ErrCodeApplicationNotPending, ErrCodeApplicationLocked, ErrCodeLoanAlreadyClosed, ErrCodeBalanceChanged:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
