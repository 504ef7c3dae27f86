package middleware

import (
	"context"
	"time"

	"dexscout/utils"

	"github.com/sony/gobreaker"
)

// BreakerSettings tunes NewBreaker. Zero values take the defaults below.
type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// NewBreaker returns a circuit breaker that trips once at least MinRequests
// were seen in the interval and FailureRatio of them failed.
func NewBreaker(name string, s BreakerSettings) *gobreaker.CircuitBreaker {
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 60 * time.Second
	}
	if s.MinRequests == 0 {
		s.MinRequests = 3
	}
	if s.FailureRatio == 0 {
		s.FailureRatio = 0.6
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && failureRatio >= s.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			utils.Logger.Infow("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})
}

// WithCircuitBreaker runs fn through cb. A context that is already done
// short-circuits without counting against the breaker.
func WithCircuitBreaker(ctx context.Context, cb *gobreaker.CircuitBreaker, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}
