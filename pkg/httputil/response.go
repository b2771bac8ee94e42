// Package httputil provides shared HTTP utilities for consistent response
// handling. Every JSON response carries a success boolean.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is an error with a declared HTTP status. Handlers return it when
// a failure maps to a specific status; anything else translates to 500.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates an APIError with the given status and message.
func NewAPIError(status int, format string, args ...any) *APIError {
	return &APIError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// StatusOf returns the declared status of err, or 500 when none is declared.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteSuccess writes a 200 response whose body is data plus success=true.
// A nil data writes the bare {"success":true} envelope.
func WriteSuccess(w http.ResponseWriter, data map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range data {
		body[k] = v
	}
	WriteJSON(w, http.StatusOK, body)
}

// WriteError writes an error envelope {error, success:false} with extra
// fields merged in. The status comes from the error's declared status.
func WriteError(w http.ResponseWriter, err error, extra map[string]any) {
	body := map[string]any{
		"success": false,
		"error":   err.Error(),
	}
	for k, v := range extra {
		body[k] = v
	}
	WriteJSON(w, StatusOf(err), body)
}
