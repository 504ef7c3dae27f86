package client

import (
	"errors"
	"fmt"
	"strings"

	"dexscout/models"
)

var ErrAllEndpointsFailed = errors.New("all endpoints failed")

// AllEndpointsFailedError is returned when every candidate for a logical call
// was tried without success. Attempts holds the most recent attempts, oldest
// first.
type AllEndpointsFailedError struct {
	Operation models.Operation
	Chain     string
	Tried     int
	Attempts  []models.Attempt
}

func (e *AllEndpointsFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s on %s: %v after %d candidate(s)", e.Operation, e.Chain, ErrAllEndpointsFailed, e.Tried)
	if len(e.Attempts) > 0 {
		b.WriteString("; last attempts:")
		for _, a := range e.Attempts {
			fmt.Fprintf(&b, " [%s status=%d %s]", a.Candidate, a.HTTPStatus, a.Outcome)
		}
	}
	return b.String()
}

func (e *AllEndpointsFailedError) Unwrap() error { return ErrAllEndpointsFailed }

// StatusCodes lists the HTTP status of each recorded attempt, 0 when no
// response was received.
func (e *AllEndpointsFailedError) StatusCodes() []int {
	codes := make([]int, len(e.Attempts))
	for i, a := range e.Attempts {
		codes[i] = a.HTTPStatus
	}
	return codes
}

// attemptLog keeps the last n attempts of a logical call.
type attemptLog struct {
	n     int
	items []models.Attempt
}

func newAttemptLog(n int) *attemptLog {
	if n < 1 {
		n = 1
	}
	return &attemptLog{n: n, items: make([]models.Attempt, 0, n)}
}

func (l *attemptLog) add(a models.Attempt) {
	if len(l.items) == l.n {
		copy(l.items, l.items[1:])
		l.items = l.items[:l.n-1]
	}
	l.items = append(l.items, a)
}

func (l *attemptLog) list() []models.Attempt {
	out := make([]models.Attempt, len(l.items))
	copy(out, l.items)
	return out
}
