package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dexscout_attempts_total",
		Help: "HTTP attempts against API candidates by outcome",
	}, []string{"operation", "plan", "outcome"})

	attemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dexscout_attempt_duration_seconds",
		Help:    "Latency of single HTTP attempts",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	callsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dexscout_logical_calls_total",
		Help: "Logical calls by result",
	}, []string{"operation", "result"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dexscout_logical_call_duration_seconds",
		Help:    "Wall time of logical calls including retries and fallbacks",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"operation"})

	fallbacksMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dexscout_fallbacks_total",
		Help: "Times a logical call advanced to the next candidate",
	}, []string{"operation"})

	limiterWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexscout_rate_limiter_wait_seconds",
		Help:    "Time spent waiting for the rate limiter",
		Buckets: prometheus.LinearBuckets(0, 0.5, 10),
	})

	// Internal counters
	attempts      uint64
	callsOK       uint64
	callsFailed   uint64
	lastMu        sync.Mutex
	lastSucceeded time.Time
	startTime     = time.Now()
)

func RecordAttempt(operation, plan, outcome string, latency time.Duration) {
	atomic.AddUint64(&attempts, 1)
	attemptsMetric.WithLabelValues(operation, plan, outcome).Inc()
	attemptDuration.WithLabelValues(operation).Observe(latency.Seconds())
}

func RecordCall(operation string, ok bool, duration time.Duration) {
	result := "ok"
	if ok {
		atomic.AddUint64(&callsOK, 1)
		lastMu.Lock()
		lastSucceeded = time.Now()
		lastMu.Unlock()
	} else {
		result = "failed"
		atomic.AddUint64(&callsFailed, 1)
	}
	callsMetric.WithLabelValues(operation, result).Inc()
	callDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordFallback(operation string) {
	fallbacksMetric.WithLabelValues(operation).Inc()
}

func RecordLimiterWait(d time.Duration) {
	limiterWait.Observe(d.Seconds())
}

// Stats is the in-process view used by the health endpoint.
type Stats struct {
	Attempts      uint64    `json:"attempts"`
	CallsOK       uint64    `json:"calls_ok"`
	CallsFailed   uint64    `json:"calls_failed"`
	LastSucceeded time.Time `json:"last_succeeded,omitempty"`
	Uptime        string    `json:"uptime"`
}

func GetStats() Stats {
	lastMu.Lock()
	last := lastSucceeded
	lastMu.Unlock()
	return Stats{
		Attempts:      atomic.LoadUint64(&attempts),
		CallsOK:       atomic.LoadUint64(&callsOK),
		CallsFailed:   atomic.LoadUint64(&callsFailed),
		LastSucceeded: last,
		Uptime:        time.Since(startTime).Round(time.Second).String(),
	}
}
