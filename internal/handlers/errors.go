package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "Server error"

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike, so the response does not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

const msgInvalidCredentials = "Invalid credentials"

// ValidationError reports malformed or missing input (400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness violation (400).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrorResponse defines the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeError translates err into its status and message. Anything outside the
// taxonomy becomes a 500 with a generic body; the detail is only logged.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		validation *ValidationError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &validation):
		JSONError(w, validation.Message, http.StatusBadRequest)
	case errors.As(err, &conflict):
		JSONError(w, conflict.Message, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidCredentials):
		JSONError(w, msgInvalidCredentials, http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "request failed", "op", op, "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
