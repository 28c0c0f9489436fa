package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// MemoryLimiter is the in-process fallback used when Redis is not
// configured. One token bucket per client, refilled at rpm per minute.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*rate.Limiter)}
}

func (m *MemoryLimiter) Allow(ctx context.Context, clientKey string, rpm int) (allowed bool, resetSec int, err error) {
	m.mu.Lock()
	lim, ok := m.buckets[clientKey]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm)
		m.buckets[clientKey] = lim
	}
	m.mu.Unlock()

	if !lim.Allow() {
		return false, 60, nil
	}
	return true, 0, nil
}
