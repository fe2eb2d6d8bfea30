package service

// Metrics records business outcomes. *metrics.Metrics satisfies it.
type Metrics interface {
	ObserveEligibility(outcome string)
	ObserveCalculation(outcome string)
	ObserveApplicationDecision(status string)
	ObservePayment(loanStatus string)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveEligibility(string)         {}
func (NopMetrics) ObserveCalculation(string)         {}
func (NopMetrics) ObserveApplicationDecision(string) {}
func (NopMetrics) ObservePayment(string)             {}
