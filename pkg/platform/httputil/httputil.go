// Package httputil centralizes JSON response and error envelope writing so
// every handler maps domain errors to HTTP in exactly one way.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "alumnet/pkg/domain-errors"
)

// ErrorEnvelope is the client-facing error shape: a stable machine-readable
// error code, a finer-grained reason kind, and a human message.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Errors
// without a code become opaque 500s so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorEnvelope{
			Error:   string(dErrors.CodeInternal),
			Message: "internal error",
		})
		return
	}

	status := dErrors.ToHTTPStatus(domainErr.Code)
	message := domainErr.Message
	if domainErr.Code == dErrors.CodeInternal {
		message = "internal error"
	}
	WriteJSON(w, status, ErrorEnvelope{
		Error:   string(domainErr.Code),
		Reason:  domainErr.Reason,
		Message: message,
	})
}
