package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/cvlift/cvlift/internal/logger"
	"github.com/cvlift/cvlift/internal/ratelimit"
)

type stubLimiter struct {
	allowed bool
	reset   int
	err     error
	calls   int
	lastKey string
}

func (s *stubLimiter) Allow(ctx context.Context, clientKey string, rpm int) (bool, int, error) {
	s.calls++
	s.lastKey = clientKey
	return s.allowed, s.reset, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
}

func TestRateLimitAllowed(t *testing.T) {
	lim := &stubLimiter{allowed: true}
	mw := RateLimit(lim, 10)(okHandler())

	req := httptest.NewRequest("POST", "/create-checkout-session", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lim.lastKey != "10.0.0.1" {
		t.Errorf("expected client key from RemoteAddr host, got %q", lim.lastKey)
	}
}

func TestRateLimitDenied(t *testing.T) {
	lim := &stubLimiter{allowed: false, reset: 42}
	mw := RateLimit(lim, 10)(okHandler())

	req := httptest.NewRequest("POST", "/create-checkout-session", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "42" {
		t.Errorf("expected Retry-After 42, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	logger.Init("error", "text")
	lim := &stubLimiter{err: errors.New("redis down")}
	mw := RateLimit(lim, 10)(okHandler())

	req := httptest.NewRequest("POST", "/create-checkout-session", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected fail-open 200, got %d", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	lim := &stubLimiter{allowed: false}
	tests := []struct {
		name string
		mw   func(http.Handler) http.Handler
	}{
		{"nil limiter", RateLimit(nil, 10)},
		{"zero rpm", RateLimit(lim, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.mw(okHandler()).ServeHTTP(rec, httptest.NewRequest("POST", "/create-checkout-session", nil))
			if rec.Code != 200 {
				t.Fatalf("expected 200 with enforcement disabled, got %d", rec.Code)
			}
		})
	}
	if lim.calls != 0 {
		t.Errorf("limiter should not be consulted when disabled")
	}
}

func TestRateLimitWithRedisManager(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	mgr, err := ratelimit.NewManager("redis://" + s.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	mw := RateLimit(mgr, 3)(okHandler())

	var last int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("POST", "/create-checkout-session", nil)
		req.RemoteAddr = "10.0.0.9:1000"
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding rpm, got %d", last)
	}
}
