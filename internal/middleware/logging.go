// internal/middleware/logging.go

// Package middleware carries the HTTP-level glue around the session endpoint.
package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// AccessLog wraps a handler with structured request logging. The session
// endpoint holds its request for the whole websocket lifetime, so the logged
// duration is the connection lifetime rather than a request latency.
func AccessLog(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"origin":   r.Header.Get("Origin"),
				"lifetime": time.Since(start),
			}).Info("session request finished")
		})
	}
}
