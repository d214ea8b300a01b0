// Package httputil holds the response helpers shared by the debug handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/banshee-data/holonomic/internal/monitoring"
)

// ErrorResponse is the body written for every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("httputil: failed to encode json response: %v", err)
	}
}

// WriteJSONOK writes v with 200 OK.
func WriteJSONOK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

// WriteJSONError writes msg as an ErrorResponse.
func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusBadRequest, msg)
}

// WriteError writes err with the status of the first target it wraps, or
// 500 when it wraps none of them.
func WriteError(w http.ResponseWriter, err error, statuses map[error]int) {
	WriteJSONError(w, StatusFor(err, statuses), err.Error())
}

// StatusFor returns the status mapped to the first sentinel err wraps.
func StatusFor(err error, statuses map[error]int) int {
	for target, status := range statuses {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
