package handler

import (
	"net/http"

	"github.com/segyhp/loan-manager/internal/domain"
	"github.com/segyhp/loan-manager/pkg/loanmath"
	"github.com/segyhp/loan-manager/pkg/response"
)

type CalculatorService interface {
	CalculateEMI(req domain.EMIRequest) (*domain.EMIResponse, error)
	CheckEligibility(req domain.EligibilityRequest) (*loanmath.EligibilityResult, error)
}

type CalculatorHandler struct {
	service CalculatorService
}

func NewCalculatorHandler(service CalculatorService) *CalculatorHandler {
	return &CalculatorHandler{service: service}
}

// CalculateEMI handles POST /api/v1/calculator/emi
func (h *CalculatorHandler) CalculateEMI(w http.ResponseWriter, r *http.Request) {
	var req domain.EMIRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.CalculateEMI(req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

// CheckEligibility handles POST /api/v1/eligibility
func (h *CalculatorHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req domain.EligibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.CheckEligibility(req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}
