package domain

import (
	"bytes"
	"encoding/json"

	"github.com/segyhp/loan-manager/pkg/loanmath"
)

// FormValue accepts a JSON string or number and keeps its text, so form
// input reaches the parser exactly as typed.
type FormValue string

func (f *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FormValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FormValue(n)
	return nil
}

type EMIRequest struct {
	Principal    FormValue `json:"principal"`
	InterestRate FormValue `json:"annual_interest_rate"`
	TenureYears  FormValue `json:"tenure_years"`
}

func (r EMIRequest) Form() loanmath.LoanForm {
	return loanmath.LoanForm{
		Principal:    string(r.Principal),
		InterestRate: string(r.InterestRate),
		TenureYears:  string(r.TenureYears),
	}
}

type EMIResponse struct {
	loanmath.Amortization
	Display map[string]string `json:"display"`
}

type EligibilityRequest struct {
	MonthlyIncome  FormValue `json:"monthly_income"`
	ExistingEMI    FormValue `json:"existing_emi"`
	LoanAmount     FormValue `json:"loan_amount"`
	Age            FormValue `json:"age"`
	EmploymentType string    `json:"employment_type"`
}

func (r EligibilityRequest) Form() loanmath.EligibilityForm {
	return loanmath.EligibilityForm{
		MonthlyIncome: string(r.MonthlyIncome),
		ExistingEMI:   string(r.ExistingEMI),
		LoanAmount:    string(r.LoanAmount),
		Age:           string(r.Age),
	}
}
