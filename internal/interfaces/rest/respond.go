// Package rest contains the HTTP response helpers shared by both services.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cardmint/cardmint/internal/application"
)

// ErrorResponse is the wire shape for every failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP status and writes the error body. Business
// rejections surface their reason; internal errors are logged with full
// context and surfaced as a generic message so nothing internal leaks.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status := application.ToHTTPStatus(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("internal error",
			"error", err,
			"code", application.ToErrorCode(err),
		)
		msg = "internal server error"
	}

	WriteJSON(w, status, ErrorResponse{Error: msg})
}
