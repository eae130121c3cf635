package middleware

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogRequest logs every request once it has been served, with the status and
// duration. Health checks only show up at trace level.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := &responseWriter{w, http.StatusOK}
			begin := time.Now()
			next.ServeHTTP(resp, r)

			entry := log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"owner":  r.Header.Get(OwnerHeader),
				"status": resp.statusCode,
				"took":   time.Since(begin).String(),
			})
			switch {
			case r.URL.Path == "/health":
				entry.Trace("request")
			case resp.statusCode >= http.StatusInternalServerError:
				entry.Warn("request failed")
			default:
				entry.Debug("request")
			}
		})
	}
}
