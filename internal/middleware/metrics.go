package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mark-c-hall/moviecards/internal/metrics"
)

// Metrics must sit directly around the mux so the matched route pattern is
// visible after the call.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			metrics.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
			metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
