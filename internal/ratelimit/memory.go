package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long an unused key keeps its bucket.
const idleAfter = 10 * time.Minute

// MemoryLimiter keeps one token bucket per key in process. Each bucket holds
// limit tokens and refills them evenly over window.
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*entry
	sweptAt  time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		limiters: make(map[string]*entry),
	}
}

func (ml *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := ml.now()

	ml.mu.Lock()
	e, ok := ml.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Every(ml.window/time.Duration(ml.limit)), ml.limit)}
		ml.limiters[key] = e
	}
	e.lastSeen = now
	ml.sweep(now)
	ml.mu.Unlock()

	allowed := e.limiter.AllowN(now, 1)
	tokens := int(e.limiter.TokensAt(now))
	if tokens < 0 {
		tokens = 0
	}

	reset := now
	if tokens < ml.limit {
		reset = now.Add(ml.window / time.Duration(ml.limit) * time.Duration(ml.limit-tokens))
	}
	return Result{
		Allowed:   allowed,
		Limit:     ml.limit,
		Remaining: tokens,
		Reset:     reset,
	}, nil
}

// sweep drops idle buckets. Callers hold mu.
func (ml *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(ml.sweptAt) < idleAfter {
		return
	}
	for key, e := range ml.limiters {
		if now.Sub(e.lastSeen) > idleAfter {
			delete(ml.limiters, key)
		}
	}
	ml.sweptAt = now
}

func (ml *MemoryLimiter) Close() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.limiters = make(map[string]*entry)
	return nil
}
