package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/segyhp/loan-manager/internal/config"
	"github.com/segyhp/loan-manager/pkg/loanmath"
)

var fixedNow = time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	policy := loanmath.DefaultPolicy()
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			ReminderDays: 3,
			Timezone:     "UTC",
		},
		Business: config.BusinessConfig{
			DefaultInterestRate: "12",
			DefaultTenureYears:  1,
			DebtToIncomeCeiling: policy.DebtToIncomeCeiling,
			HorizonMonths:       policy.HorizonMonths,
			MinAge:              policy.MinAge,
			MaxAge:              policy.MaxAge,
			CurrencySymbol:      "E",
		},
	}
}

type recordingMetrics struct {
	eligibility []string
	calculation []string
	decisions   []string
	payments    []string
}

func (m *recordingMetrics) ObserveEligibility(outcome string) {
	m.eligibility = append(m.eligibility, outcome)
}

func (m *recordingMetrics) ObserveCalculation(outcome string) {
	m.calculation = append(m.calculation, outcome)
}

func (m *recordingMetrics) ObserveApplicationDecision(status string) {
	m.decisions = append(m.decisions, status)
}

func (m *recordingMetrics) ObservePayment(loanStatus string) {
	m.payments = append(m.payments, loanStatus)
}
