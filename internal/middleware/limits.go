package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/cvlift/cvlift/internal/logger"
)

// Limiter reports whether a client may proceed. Implemented by the Redis
// manager and the in-memory fallback in internal/ratelimit.
type Limiter interface {
	Allow(ctx context.Context, clientKey string, rpm int) (allowed bool, resetSec int, err error)
}

// RateLimit caps requests per client IP per minute. A nil limiter or a
// non-positive rpm disables enforcement. Limiter errors fail open: checkout
// availability beats enforcement on a Redis hiccup.
func RateLimit(l Limiter, rpm int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || rpm <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			allowed, reset, err := l.Allow(r.Context(), clientKey(r), rpm)
			if err != nil {
				logger.WithContext(r.Context()).Warn("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(reset))
				write429(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller. RealIP middleware has already rewritten
// RemoteAddr from X-Forwarded-For when present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func write429(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"message":"Too many requests. Please retry later."}`))
}
