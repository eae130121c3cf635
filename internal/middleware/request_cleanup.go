package middleware

import (
	"io"
	"net/http"
)

// DefaultMaxBodyBytes caps request bodies; a full 12 week plan document is well under it.
const DefaultMaxBodyBytes = 1 << 20

// LimitAndDrainRequest caps the request body at maxBodyBytes. Once the handler
// returns, up to maxBodyBytes of unread body are drained and the body is closed
// so the keep-alive connection can be reused.
func LimitAndDrainRequest(maxBodyBytes int64) func(next http.Handler) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next.ServeHTTP(w, r)
			_, _ = io.CopyN(io.Discard, r.Body, maxBodyBytes)
			_ = r.Body.Close()
		})
	}
}
