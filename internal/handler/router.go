package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Calculator    *CalculatorHandler
	Applications  *ApplicationHandler
	Billing       *BillingHandler
	Notifications *NotificationHandler
	Health        *HealthHandler
	Metrics       http.Handler
}

// Register mounts the routes on router
func (h *Handlers) Register(router *mux.Router) {
	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods("GET")
	router.HandleFunc("/health/ready", h.Health.Ready).Methods("GET")
	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics).Methods("GET")
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/calculator/emi", h.Calculator.CalculateEMI).Methods("POST")
	api.HandleFunc("/eligibility", h.Calculator.CheckEligibility).Methods("POST")

	api.HandleFunc("/applications", h.Applications.Submit).Methods("POST")
	api.HandleFunc("/applications", h.Applications.List).Methods("GET")
	api.HandleFunc("/applications/{applicationId}", h.Applications.Get).Methods("GET")
	api.HandleFunc("/applications/{applicationId}", h.Applications.Delete).Methods("DELETE")
	api.HandleFunc("/applications/{applicationId}/approve", h.Applications.Approve).Methods("POST")
	api.HandleFunc("/applications/{applicationId}/decline", h.Applications.Decline).Methods("POST")

	api.HandleFunc("/loans/{loanId}", h.Billing.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedule", h.Billing.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/outstanding", h.Billing.GetOutstanding).Methods("GET")
	api.HandleFunc("/loans/{loanId}/payments", h.Billing.MakePayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/payments", h.Billing.ListPayments).Methods("GET")

	api.HandleFunc("/users/{userId}/applications", h.Applications.ListByUser).Methods("GET")
	api.HandleFunc("/users/{userId}/loans", h.Billing.ListLoans).Methods("GET")
	api.HandleFunc("/users/{userId}/notifications", h.Notifications.List).Methods("GET")

	api.HandleFunc("/notifications/{notificationId}/read", h.Notifications.MarkRead).Methods("POST")
}
