package monitoring

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"dexscout/catalog"
	"dexscout/metrics"
)

type HealthStatus struct {
	Status          string            `json:"status"`
	Uptime          string            `json:"uptime"`
	StartTime       time.Time         `json:"start_time"`
	MemoryUsage     uint64            `json:"memory_usage"`
	GoroutineCount  int               `json:"goroutine_count"`
	ComponentStatus map[string]string `json:"component_status"`
	Calls           metrics.Stats     `json:"calls"`
	Catalog         *catalog.Snapshot `json:"catalog,omitempty"`
}

var (
	startTime    = time.Now()
	checksMu     sync.RWMutex
	healthChecks = make(map[string]func() bool)
)

func RegisterHealthCheck(name string, check func() bool) {
	checksMu.Lock()
	healthChecks[name] = check
	checksMu.Unlock()
}

// HealthHandler reports process state, call counters and what the catalog
// has learned so far. cat may be nil.
func HealthHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		status := HealthStatus{
			Status:          "ok",
			Uptime:          time.Since(startTime).Round(time.Second).String(),
			StartTime:       startTime,
			MemoryUsage:     m.Alloc,
			GoroutineCount:  runtime.NumGoroutine(),
			ComponentStatus: make(map[string]string),
			Calls:           metrics.GetStats(),
		}
		if cat != nil {
			snap := cat.Snapshot()
			status.Catalog = &snap
		}

		checksMu.RLock()
		names := make([]string, 0, len(healthChecks))
		for name := range healthChecks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if healthChecks[name]() {
				status.ComponentStatus[name] = "healthy"
			} else {
				status.ComponentStatus[name] = "unhealthy"
				status.Status = "degraded"
			}
		}
		checksMu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	}
}
