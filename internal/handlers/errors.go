package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/crucial707/reminders/internal/middleware"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	writeJSON(w, status, ErrorResponse{Error: message, Fields: fields})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads one JSON value from the body into v. On failure it writes the
// matching 400/413 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		JSONError(w, "request body is required", http.StatusBadRequest)
		return false
	}
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
		JSONError(w, "request body is required", http.StatusBadRequest)
	case middleware.IsBodyTooLarge(err):
		JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
	default:
		JSONError(w, "invalid JSON", http.StatusBadRequest)
	}
	return false
}
