package ratelimit

import "sync"

// Registry hands out one shared Limiter per API key.
type Registry struct {
	perMinute int
	burst     int

	mu       sync.RWMutex
	limiters map[string]*Limiter
}

func NewRegistry(perMinute, burst int) *Registry {
	return &Registry{
		perMinute: perMinute,
		burst:     burst,
		limiters:  make(map[string]*Limiter),
	}
}

// For returns the limiter for apiKey, creating it on first use.
func (r *Registry) For(apiKey string) *Limiter {
	r.mu.RLock()
	l, ok := r.limiters[apiKey]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[apiKey]; ok {
		return l
	}
	l = NewLimiter(r.perMinute, r.burst)
	r.limiters[apiKey] = l
	return l
}
