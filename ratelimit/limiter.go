// Package ratelimit contains fixed window counters. Every hit is counted
// with a single atomic increment, the check happens on the returned value.
package ratelimit

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const DefaultWindow = 24 * time.Hour

type Result struct {
	Allowed    bool
	Remaining  int64
	Hits       int64
	RetryAfter time.Duration
	// Start of the window the hit was counted in
	WindowStart time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// TxLimiter counts the hit inside the caller's transaction, a rollback
// takes the hit back
type TxLimiter interface {
	Limiter
	AllowTx(tx *gorm.DB, key string) (Result, error)
}

// Releaser takes back a hit counted by Allow, used when the work it
// guarded failed
type Releaser interface {
	Release(ctx context.Context, key string, res Result) error
}

func result(hits, limit int64, windowStart, windowEnd, now time.Time) Result {
	res := Result{
		Allowed:     hits <= limit,
		Remaining:   max(limit-hits, 0),
		Hits:        hits,
		WindowStart: windowStart,
	}

	if !res.Allowed {
		res.RetryAfter = windowEnd.Sub(now)
	}

	return res
}
