package utils

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// NewExponentialBackoff returns an unrandomized doubling schedule starting at
// base and capped at max. It never stops on its own; callers bound the number
// of attempts. Jitter is added by the caller on top of NextBackOff.
func NewExponentialBackoff(base, max time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.MaxInterval = max
	b.MaxElapsedTime = 0
	b.Multiplier = 2.0
	b.RandomizationFactor = 0
	b.Reset()
	return b
}
