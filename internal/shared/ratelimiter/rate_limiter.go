// Package ratelimiter throttles outbound calls to quote providers.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface limits how often an operation such as an API call may run.
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter is a token bucket allowing limit calls per interval.
type RateLimiter struct {
	limiter *rate.Limiter
	name    string
}

// NewRateLimiter allows limit calls per interval with a burst of one.
func NewRateLimiter(name string, limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	every := interval / time.Duration(limit)
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(every), 1),
		name:    name,
	}
}

// PerSecond allows n calls per second.
func PerSecond(name string, n int) *RateLimiter {
	return NewRateLimiter(name, n, time.Second)
}

// Wait blocks until the next call is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	r := rl.limiter.Reserve()
	if !r.OK() {
		return rl.limiter.Wait(ctx)
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	if delay > time.Second {
		slog.Debug("rate limit reached, waiting", "limiter", rl.name, "delay", delay)
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
