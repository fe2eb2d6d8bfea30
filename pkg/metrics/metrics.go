// Package metrics exposes Prometheus collectors for the HTTP API and the
// loan decisions it makes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/segyhp/loan-manager/pkg/response"
)

const namespace = "loan_manager"

// Metrics groups the collectors registered by the service.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration      *prometheus.HistogramVec
	eligibilityDecisions *prometheus.CounterVec
	calculations         *prometheus.CounterVec
	applicationDecisions *prometheus.CounterVec
	payments             *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		eligibilityDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_decisions_total",
			Help:      "Eligibility checks by outcome.",
		}, []string{"outcome"}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emi_calculations_total",
			Help:      "EMI calculations by outcome.",
		}, []string{"outcome"}),
		applicationDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_decisions_total",
			Help:      "Loan application state changes.",
		}, []string{"status"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Recorded loan payments by resulting loan status.",
		}, []string{"loan_status"}),
	}

	reg.MustRegister(
		m.requestDuration,
		m.eligibilityDecisions,
		m.calculations,
		m.applicationDecisions,
		m.payments,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes request latency labelled by the matched mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := response.NewRecorder(w)

		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(recorder.StatusCode())).
			Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveEligibility(outcome string) {
	m.eligibilityDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCalculation(outcome string) {
	m.calculations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveApplicationDecision(status string) {
	m.applicationDecisions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObservePayment(loanStatus string) {
	m.payments.WithLabelValues(loanStatus).Inc()
}
