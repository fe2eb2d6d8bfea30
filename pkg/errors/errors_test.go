package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/segyhp/loan-manager/pkg/loanmath"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "missing fields", err: WrapInvalidInput(&loanmath.InputError{Field: "age", Reason: loanmath.ReasonRequired}), expected: http.StatusUnprocessableEntity},
		{name: "bare loanmath error", err: &loanmath.InputError{Field: "principal", Reason: loanmath.ReasonDegenerate}, expected: http.StatusUnprocessableEntity},
		{name: "application not found", err: WrapApplicationNotFound("a1"), expected: http.StatusNotFound},
		{name: "loan not found", err: WrapLoanNotFound("l1"), expected: http.StatusNotFound},
		{name: "not pending", err: WrapApplicationNotPending("a1", "approved"), expected: http.StatusConflict},
		{name: "loan closed", err: WrapLoanAlreadyClosed("l1"), expected: http.StatusConflict},
		{name: "payment exceeds balance", err: WrapPaymentExceedsBalance("10", "5"), expected: http.StatusUnprocessableEntity},
		{name: "database", err: WrapDatabaseError(errors.New("boom")), expected: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestWrapInvalidInput(t *testing.T) {
	missing, err := loanmath.ParseEligibilityForm(loanmath.EligibilityForm{})
	assert.Equal(t, loanmath.EligibilityQuery{}, missing)

	be := WrapInvalidInput(err)
	assert.Equal(t, ErrCodeMissingFields, be.Code)
	assert.True(t, errors.Is(be, loanmath.ErrMissingFields))

	_, err = loanmath.ComputeAmortization(loanmath.LoanQuery{Principal: 1, TenureYears: 1})
	be = WrapInvalidInput(err)
	assert.Equal(t, ErrCodeInvalidInput, be.Code)
	assert.True(t, errors.Is(be, loanmath.ErrMalformedInput))
}
