package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vinipx/quantaf/internal/domain"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// WriteDomainError maps an error from this repository's own error
// vocabulary (internal/domain's sentinel errors, *domain.ValidationError,
// *domain.AssertionFailure — spec.md §7) to an HTTP status and error code,
// and writes it in the standard error response format. Anything not
// recognised falls back to 500 internal_error, matching the teacher's
// "unknown errors never leak their Go error string" convention.
func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		WriteError(w, http.StatusBadRequest, "validation_error", verr.Error())
		return
	}

	var afail *domain.AssertionFailure
	if errors.As(err, &afail) {
		WriteError(w, http.StatusConflict, "assertion_failure", afail.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidParameter), errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrEmptyResponseSequence), errors.Is(err, domain.ErrMissingCorrelationKey):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrDuplicateKey):
		WriteError(w, http.StatusConflict, "duplicate_key", err.Error())
	case errors.Is(err, domain.ErrNoSession):
		WriteError(w, http.StatusPreconditionFailed, "no_session", err.Error())
	case errors.Is(err, domain.ErrTimeout):
		WriteError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	case errors.Is(err, domain.ErrTransportFailure):
		WriteError(w, http.StatusBadGateway, "transport_failure", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}

// ParseJSON decodes the request body as JSON into v.
// It validates that the Content-Type header is application/json and
// returns a *domain.ValidationError for missing/incorrect content type or
// malformed JSON, the same error type OrderRequestBuilder.Build uses for
// request-shape failures, so callers can route it through WriteDomainError
// uniformly.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return &domain.ValidationError{Message: "request body must be valid JSON with Content-Type: application/json"}
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Message: "request body must be valid JSON with Content-Type: application/json"}
	}

	return nil
}
