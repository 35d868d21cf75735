package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds the handler's run time; the request context is cancelled
// when it expires, which also aborts in-flight calls to the moviecards service.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
	}
}
