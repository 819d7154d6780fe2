package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message, verbatim for traceability
	Kind    string            `json:"kind,omitempty"`    // Ledger error kind
	Ref     string            `json:"ref,omitempty"`     // Offending folio/charge/order id
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		errorResp.Details = make(map[string]string)
		for _, err := range validationErr.(validator.ValidationErrors) {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// SendLedgerError maps a typed ledger error onto an HTTP response. State and
// validation errors are surfaced verbatim with the offending id; concurrency
// errors report success since the retry already happened.
func SendLedgerError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var retryable *RetryableError
	if errors.As(err, &retryable) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(ErrorResponse{Error: retryable.Error(), Ref: retryable.Ref})
		return
	}

	var le *LedgerError
	if !errors.As(err, &le) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
		return
	}

	switch le.Kind {
	case KindValidation:
		w.WriteHeader(http.StatusBadRequest)
	case KindState:
		w.WriteHeader(http.StatusConflict)
	case KindNotFound:
		w.WriteHeader(http.StatusNotFound)
	case KindConcurrency:
		// idempotent retry, nothing new happened
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "duplicate": true, "ref": le.Ref})
		return
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	json.NewEncoder(w).Encode(ErrorResponse{Error: le.Error(), Kind: le.Kind.String(), Ref: le.Ref})
}
