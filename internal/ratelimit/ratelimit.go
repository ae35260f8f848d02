// Package ratelimit throttles outgoing requests.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter spaces requests evenly. A nil *Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// New allows requestsPerSecond with a burst of one. Zero or negative disables
// throttling.
func New(requestsPerSecond float64) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(toLimit(requestsPerSecond), 1)}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}

func (l *Limiter) SetLimit(requestsPerSecond float64) {
	l.limiter.SetLimit(toLimit(requestsPerSecond))
}

// Limit reports the configured rate, 0 when unlimited.
func (l *Limiter) Limit() float64 {
	if l == nil {
		return 0
	}
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

func toLimit(requestsPerSecond float64) rate.Limit {
	if requestsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(requestsPerSecond)
}
