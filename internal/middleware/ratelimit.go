package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	clientIdleTTL   = 10 * time.Minute
	cleanupInterval = 5 * time.Minute
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per remote IP. Idle buckets are swept
// on access, at most once per cleanupInterval.
type rateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*client
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

func newRateLimiter(limit rate.Limit, burst int) *rateLimiter {
	return &rateLimiter{
		clients:     make(map[string]*client),
		limit:       limit,
		burst:       burst,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > cleanupInterval {
		for key, c := range rl.clients {
			if now.Sub(c.lastSeen) > clientIdleTTL {
				delete(rl.clients, key)
			}
		}
		rl.lastCleanup = now
	}

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func RateLimit(limit rate.Limit, burst int, logger *slog.Logger) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !rl.allow(ip) {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					"ip", ip,
					"path", r.URL.Path,
					"request_id", RequestID(r.Context()),
				)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
