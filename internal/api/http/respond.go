package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"ecoloop-backend/internal/logger"
	"ecoloop-backend/internal/repository"
	"ecoloop-backend/internal/service"
)

// envelope is the JSON response wrapper every endpoint returns.
type envelope struct {
	StatusCode   int      `json:"status_code"`
	IsSuccess    bool     `json:"is_success"`
	ErrorMessage []string `json:"error_message"`
	Result       any      `json:"result"`
}

func writeResult(w http.ResponseWriter, statusCode int, result any) {
	writeJSON(w, envelope{
		StatusCode:   statusCode,
		IsSuccess:    true,
		ErrorMessage: []string{},
		Result:       result,
	})
}

func writeError(w http.ResponseWriter, statusCode int, messages ...string) {
	writeJSON(w, envelope{
		StatusCode:   statusCode,
		IsSuccess:    false,
		ErrorMessage: messages,
		Result:       nil,
	})
}

func writeJSON(w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeServiceError maps business failures to HTTP responses. Unexpected
// errors are logged and surfaced as a generic failure.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Field+": "+vErr.Message)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNoActiveOTP),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrTooManyAttempts),
		errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrInvalidRegistration),
		errors.Is(err, service.ErrRegistrationExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateApplication),
		errors.Is(err, service.ErrRoleAlreadyHeld),
		errors.Is(err, service.ErrRoleTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAlreadyReviewed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found.")
	default:
		logger.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}
