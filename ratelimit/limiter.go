package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing calls for one API key. Acquire blocks until both the
// token bucket and any server-imposed not-before time allow a call.
type Limiter struct {
	bucket *rate.Limiter

	mu        sync.Mutex
	notBefore time.Time
}

// NewLimiter allows perMinute calls per minute with the given burst.
func NewLimiter(perMinute, burst int) *Limiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return NewLimiterEvery(time.Minute/time.Duration(perMinute), burst)
}

// NewLimiterEvery allows one call per interval with the given burst.
func NewLimiterEvery(interval time.Duration, burst int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Every(interval), burst)}
}

// Acquire waits for a token and consumes it. It returns ctx.Err() if the
// context ends first.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.waitNotBefore(ctx); err != nil {
		return err
	}
	if err := l.bucket.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	// A 429 may have arrived while we queued on the bucket.
	return l.waitNotBefore(ctx)
}

// BlockUntil forbids calls before t. Later hints extend the block, earlier
// ones never shorten it.
func (l *Limiter) BlockUntil(t time.Time) {
	l.mu.Lock()
	if t.After(l.notBefore) {
		l.notBefore = t
	}
	l.mu.Unlock()
}

// NotBefore returns the current server-imposed block, zero when none.
func (l *Limiter) NotBefore() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notBefore
}

func (l *Limiter) waitNotBefore(ctx context.Context) error {
	for {
		wait := time.Until(l.NotBefore())
		if wait <= 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
