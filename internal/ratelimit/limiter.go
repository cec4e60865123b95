// Package ratelimit implements fixed-window request throttling used in front
// of the public authentication routes.
package ratelimit

import (
	"context"
	"time"
)

// Result describes a single Allow decision.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits per key within a fixed window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func decide(count int64, limit int, ttl time.Duration) Result {
	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, RetryAfter: ttl}
	}
	return Result{Allowed: true, Remaining: limit - int(count)}
}
