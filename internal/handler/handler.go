package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/loan-manager/pkg/errors"
	"github.com/segyhp/loan-manager/pkg/response"
)

// newValidator validates decimal amounts as numbers so gt/gte tags apply.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decodeJSON decodes the request body, answering 400 on malformed JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}
	return true
}

// validate runs struct validation, answering 422 with the failing fields.
func validate(w http.ResponseWriter, v *validator.Validate, req interface{}) bool {
	err := v.Struct(req)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field()+" "+fe.Tag())
		}
		response.UnprocessableEntity(w, "Validation failed: "+strings.Join(fields, ", "),
			customError.NewBusinessError(customError.ErrCodeInvalidInput, "validation failed", err))
		return false
	}

	response.BadRequest(w, "Invalid request", err)
	return false
}

// pathUUID reads a UUID path variable, answering 400 when it is malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
