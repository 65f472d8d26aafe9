// Package httpserver constructs the gateway's HTTP server. Request
// timeouts live in the middleware chain; only the header read timeout
// is set here.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server for the given listen address and root handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
