// Package ratelimit provides a keyed token-bucket rate limiter. Buckets are
// created on first use and evicted after a period of inactivity, so an
// open-ended key space such as client IPs stays bounded.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Idle buckets are dropped after this long without a request.
const idleEviction = 10 * time.Minute

const sweepInterval = time.Minute

// KeyedRateLimiter hands out one token bucket per key.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int

	done     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a keyed limiter allowing rps requests per second with the
// given burst per key.
func New(rps float64, burst int) *KeyedRateLimiter {
	k := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}

	go k.sweep()

	return k
}

// Allow reports whether a request for key may proceed right now.
func (k *KeyedRateLimiter) Allow(key string) bool {
	return k.bucket(key).Allow()
}

// Wait blocks until a request for key may proceed or ctx is canceled.
func (k *KeyedRateLimiter) Wait(ctx context.Context, key string) error {
	return k.bucket(key).Wait(ctx)
}

// Stop ends the background eviction sweep.
func (k *KeyedRateLimiter) Stop() {
	k.stopOnce.Do(func() { close(k.done) })
}

// bucket returns the key's limiter, creating it on first use and marking
// it live for the eviction sweep.
func (k *KeyedRateLimiter) bucket(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

// sweep periodically drops buckets that have gone idle.
func (k *KeyedRateLimiter) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-k.done:
			return
		case now := <-ticker.C:
			k.evictIdle(now)
		}
	}
}

func (k *KeyedRateLimiter) evictIdle(now time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for key, e := range k.entries {
		if now.Sub(e.lastSeen) > idleEviction {
			delete(k.entries, key)
		}
	}
}
