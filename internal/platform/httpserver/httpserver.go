package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server for the auth API. Timeouts are generous enough
// for a bcrypt compare plus one identity-provider round trip.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
