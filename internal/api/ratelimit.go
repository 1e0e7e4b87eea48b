package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/linkcardapp/linkcard-server/internal/http/response"
	"github.com/linkcardapp/linkcard-server/internal/ratelimit"
)

// RateLimiter is the keyed limiter used for per-client throttling.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a limiter allowing n requests per interval with
// the given burst per key.
func NewRateLimiter(n int, interval time.Duration, burst int) *RateLimiter {
	return ratelimit.New(float64(n)/interval.Seconds(), burst)
}

// RateLimitMiddleware throttles requests by client IP, answering 429 once
// a client exhausts its bucket.
func RateLimitMiddleware(limiter *RateLimiter, logger interface{ Warn(msg string, args ...any) }) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				response.TooManyRequests(w, "Too many requests. Please try again later.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the client address, trusting proxy headers when
// present: first X-Forwarded-For entry, then X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
