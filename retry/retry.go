package retry

import (
	"context"
	"math/rand"
	"time"

	"dexscout/executor"
	"dexscout/utils"

	"github.com/cenkalti/backoff/v4"
)

type State int

const (
	Attempting State = iota
	Success
	Retrying
	FallbackRequired
	Exhausted
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case Success:
		return "success"
	case Retrying:
		return "retrying"
	case FallbackRequired:
		return "fallback_required"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Policy bounds retries on a single candidate.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      250 * time.Millisecond,
	}
}

// Schedule yields the delays for one candidate. A fresh Schedule is used for
// every candidate within a logical call.
type Schedule struct {
	policy Policy
	exp    *backoff.ExponentialBackOff
	last   time.Duration
	rnd    func() float64
}

func (p Policy) NewSchedule() *Schedule {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	max := p.MaxDelay
	if max < base {
		max = base
	}
	return &Schedule{
		policy: p,
		exp:    utils.NewExponentialBackoff(base, max),
		rnd:    rand.Float64,
	}
}

// Next returns base*2^(n-1) plus jitter for the n-th consecutive transient
// failure. Delays never decrease, even once the cap is reached.
func (s *Schedule) Next() time.Duration {
	d := s.exp.NextBackOff()
	if s.policy.Jitter > 0 {
		d += time.Duration(s.rnd() * float64(s.policy.Jitter))
	}
	if d < s.last {
		d = s.last
	}
	s.last = d
	return d
}

// Decision is the controller's verdict on one attempt.
type Decision struct {
	State State
	Delay time.Duration
}

// Decide classifies the outcome of the attempt-th try (1-based) on the
// current candidate. A 429 hint is a floor on the next wait, and a
// rate-limited attempt consumes the same budget as any other transient
// failure.
func (p Policy) Decide(attempt int, o executor.Outcome, sched *Schedule) Decision {
	switch {
	case o.Success:
		return Decision{State: Success}
	case o.Kind == executor.KindCanceled:
		return Decision{State: Exhausted}
	case !o.Kind.Transient():
		return Decision{State: FallbackRequired}
	case attempt >= p.MaxAttempts:
		return Decision{State: FallbackRequired}
	}

	delay := sched.Next()
	if o.Kind == executor.KindRateLimited && o.RetryAfter > delay {
		delay = o.RetryAfter
	}
	return Decision{State: Retrying, Delay: delay}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
