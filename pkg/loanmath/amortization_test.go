package loanmath

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAmortization(t *testing.T) {
	tests := []struct {
		name         string
		query        LoanQuery
		monthly      string
		total        string
		interest     string
		installments float64
	}{
		{
			name:         "one year at 12 percent",
			query:        LoanQuery{Principal: 10000, AnnualInterestRatePercent: 12, TenureYears: 1},
			monthly:      "888.49",
			total:        "10661.88",
			interest:     "661.88",
			installments: 12,
		},
		{
			name:         "five years at 10 percent",
			query:        LoanQuery{Principal: 100000, AnnualInterestRatePercent: 10, TenureYears: 5},
			monthly:      "2124.70",
			total:        "127482.00",
			interest:     "27482.00",
			installments: 60,
		},
		{
			name:         "half year tenure",
			query:        LoanQuery{Principal: 6000, AnnualInterestRatePercent: 12, TenureYears: 0.5},
			monthly:      "1035.29",
			total:        "6211.74",
			interest:     "211.74",
			installments: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeAmortization(tt.query)

			require.NoError(t, err)
			assert.Equal(t, tt.monthly, result.MonthlyPayment.StringFixed(2))
			assert.Equal(t, tt.total, result.TotalPayment.StringFixed(2))
			assert.Equal(t, tt.interest, result.TotalInterest.StringFixed(2))
			assert.Equal(t, tt.installments, result.Installments)
		})
	}
}

func TestComputeAmortization_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		query LoanQuery
		field string
	}{
		{name: "zero principal", query: LoanQuery{Principal: 0, AnnualInterestRatePercent: 12, TenureYears: 1}, field: "principal"},
		{name: "negative principal", query: LoanQuery{Principal: -5, AnnualInterestRatePercent: 12, TenureYears: 1}, field: "principal"},
		{name: "zero rate", query: LoanQuery{Principal: 1000, AnnualInterestRatePercent: 0, TenureYears: 1}, field: "annual_interest_rate"},
		{name: "negative rate", query: LoanQuery{Principal: 1000, AnnualInterestRatePercent: -1, TenureYears: 1}, field: "annual_interest_rate"},
		{name: "zero tenure", query: LoanQuery{Principal: 1000, AnnualInterestRatePercent: 12, TenureYears: 0}, field: "tenure_years"},
		{name: "NaN principal", query: LoanQuery{Principal: math.NaN(), AnnualInterestRatePercent: 12, TenureYears: 1}, field: "principal"},
		{name: "infinite tenure", query: LoanQuery{Principal: 1000, AnnualInterestRatePercent: 12, TenureYears: math.Inf(1)}, field: "tenure_years"},
		{name: "rate too small to move the growth factor", query: LoanQuery{Principal: 1000, AnnualInterestRatePercent: 1e-20, TenureYears: 1}, field: "annual_interest_rate"},
		{name: "growth overflows", query: LoanQuery{Principal: 1000, AnnualInterestRatePercent: 1000, TenureYears: 10000}, field: "annual_interest_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeAmortization(tt.query)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedInput))
			assert.False(t, errors.Is(err, ErrMissingFields))

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.field, inputErr.Field)
			assert.Equal(t, Amortization{}, result)
		})
	}
}

func TestComputeAmortization_Properties(t *testing.T) {
	principals := []float64{500, 10000, 25000.75, 1000000}
	rates := []float64{0.5, 7.25, 12, 36}
	tenures := []float64{1, 3, 15, 30}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range tenures {
				q := LoanQuery{Principal: p, AnnualInterestRatePercent: r, TenureYears: n}
				result, err := ComputeAmortization(q)
				require.NoError(t, err, "query %+v", q)

				installments := decimal.NewFromFloat(n * 12)
				assert.True(t, result.TotalPayment.Equal(result.MonthlyPayment.Mul(installments)),
					"total %s != monthly %s * %s", result.TotalPayment, result.MonthlyPayment, installments)
				assert.True(t, result.TotalInterest.Equal(result.TotalPayment.Sub(decimal.NewFromFloat(p))),
					"interest %s for query %+v", result.TotalInterest, q)
				assert.True(t, result.MonthlyPayment.IsPositive(), "query %+v", q)
				assert.False(t, result.TotalInterest.IsNegative(), "query %+v", q)
			}
		}
	}
}

func TestComputeAmortization_Idempotent(t *testing.T) {
	q := LoanQuery{Principal: 43210.5, AnnualInterestRatePercent: 9.75, TenureYears: 7}

	first, err := ComputeAmortization(q)
	require.NoError(t, err)
	second, err := ComputeAmortization(q)
	require.NoError(t, err)

	assert.Equal(t, first.MonthlyPayment.String(), second.MonthlyPayment.String())
	assert.Equal(t, first.TotalPayment.String(), second.TotalPayment.String())
	assert.Equal(t, first.TotalInterest.String(), second.TotalInterest.String())
}
