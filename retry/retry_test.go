package retry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"dexscout/executor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Jitter:      50 * time.Millisecond,
	}
}

func TestSchedule_DelaysAreNonDecreasing(t *testing.T) {
	s := testPolicy().NewSchedule()

	var prev time.Duration
	for i := 0; i < 10; i++ {
		d := s.Next()
		assert.GreaterOrEqual(t, d, prev, "delay %d", i+1)
		prev = d
	}
}

func TestSchedule_DoublesWithoutJitter(t *testing.T) {
	p := testPolicy()
	p.Jitter = 0
	s := p.NewSchedule()

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, s.Next(), "delay %d", i+1)
	}
}

func TestSchedule_JitterIsBounded(t *testing.T) {
	p := testPolicy()
	s := p.NewSchedule()
	s.rnd = func() float64 { return 0.999 }

	d := s.Next()
	assert.GreaterOrEqual(t, d, p.BaseDelay)
	assert.Less(t, d, p.BaseDelay+p.Jitter)
}

func TestDecide(t *testing.T) {
	p := testPolicy()
	p.MaxAttempts = 3

	tests := []struct {
		name    string
		attempt int
		outcome executor.Outcome
		want    State
	}{
		{"success", 1, executor.Outcome{Success: true, StatusCode: http.StatusOK}, Success},
		{"server error retries", 1, executor.Outcome{Kind: executor.KindServerError, StatusCode: 500}, Retrying},
		{"timeout retries", 2, executor.Outcome{Kind: executor.KindTimeout}, Retrying},
		{"parse error retries", 1, executor.Outcome{Kind: executor.KindParse, StatusCode: 200}, Retrying},
		{"budget spent", 3, executor.Outcome{Kind: executor.KindNetwork}, FallbackRequired},
		{"not found falls back", 1, executor.Outcome{Kind: executor.KindClientError, StatusCode: 404}, FallbackRequired},
		{"unauthorized falls back", 1, executor.Outcome{Kind: executor.KindClientError, StatusCode: 401}, FallbackRequired},
		{"wrong shape falls back", 1, executor.Outcome{Kind: executor.KindShape, StatusCode: 200}, FallbackRequired},
		{"rate limit shares budget", 3, executor.Outcome{Kind: executor.KindRateLimited, StatusCode: 429}, FallbackRequired},
		{"canceled stops", 1, executor.Outcome{Kind: executor.KindCanceled}, Exhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Decide(tt.attempt, tt.outcome, p.NewSchedule())
			assert.Equal(t, tt.want, d.State, d.State.String())
			if tt.want != Retrying {
				assert.Zero(t, d.Delay)
			}
		})
	}
}

func TestDecide_RetryAfterIsAFloor(t *testing.T) {
	p := testPolicy()
	sched := p.NewSchedule()

	d := p.Decide(1, executor.Outcome{Kind: executor.KindRateLimited, StatusCode: 429, RetryAfter: 5 * time.Second}, sched)
	require.Equal(t, Retrying, d.State)
	assert.Equal(t, 5*time.Second, d.Delay)

	// A hint shorter than the backoff does not shorten it.
	d = p.Decide(2, executor.Outcome{Kind: executor.KindRateLimited, StatusCode: 429, RetryAfter: time.Millisecond}, sched)
	require.Equal(t, Retrying, d.State)
	assert.GreaterOrEqual(t, d.Delay, 200*time.Millisecond)
}

func TestSleep_Interruptible(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleep_Completes(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 30*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.NoError(t, Sleep(context.Background(), 0))
}
