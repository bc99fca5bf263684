// Package ratelimit counts requests per key against a fixed budget.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the state of a key's budget after one request.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter consumes one unit of budget for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
	Close() error
}

func remaining(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
