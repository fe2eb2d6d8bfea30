package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateDueDate calculates the due date for a specific installment
// Installment 1 is due one month after the start date, installment 2 two months after, etc.
func CalculateDueDate(loanStartDate time.Time, installment int) time.Time {
	return loanStartDate.AddDate(0, installment, 0)
}

// GetCurrentInstallment calculates which installment period the loan is in on the given date
func GetCurrentInstallment(loanStartDate time.Time, currentDate time.Time) int {
	months := (currentDate.Year()-loanStartDate.Year())*12 + int(currentDate.Month()-loanStartDate.Month())
	if currentDate.Day() < loanStartDate.Day() {
		months--
	}

	if months < 0 {
		return 1
	}

	return months + 1
}

// IsDateOverdue checks if a due date has passed at the given time
func IsDateOverdue(dueDate time.Time, now time.Time) bool {
	return now.After(dueDate)
}

// IsDueOn reports whether dueDate falls on the calendar day of day, in day's location
func IsDueOn(dueDate time.Time, day time.Time) bool {
	start := StartOfDay(day)
	due := dueDate.In(day.Location())
	return !due.Before(start) && due.Before(start.AddDate(0, 0, 1))
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MaxDecimal returns the larger of a and b
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// FormatCurrency renders an amount with the display prefix, e.g. E1500.00
func FormatCurrency(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}
