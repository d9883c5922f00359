package metric

import (
	"sync"
	"time"
)

// Key identifies the counter space of one rule: the resource, the inspected
// parameter position, and a canonical fingerprint of the rule itself. The
// fingerprint keeps rules sharing a parameter index statistically
// independent — each rule counts only its own evaluations — while reloads of
// an unchanged rule keep their accumulated statistics.
type Key struct {
	Resource   string
	ParamIndex int
	Rule       string
}

// Registry is the process-wide table of ParamMetric instances. It is the
// only shared mutable state outside the metrics themselves and is safe for
// concurrent first access: exactly one ParamMetric is ever observed for a
// given key.
//
// An explicit Registry (rather than a package-level singleton) keeps engines
// independently testable; callers normally share the one their Limiter owns.
type Registry struct {
	mu      sync.RWMutex
	metrics map[Key]*ParamMetric

	capacity int
	onEvict  func(resource, value string)
}

// NewRegistry creates a registry whose metrics track at most capacity
// distinct values each. onEvict, if non-nil, observes cache evictions.
func NewRegistry(capacity int, onEvict func(resource, value string)) *Registry {
	return &Registry{
		metrics:  make(map[Key]*ParamMetric),
		capacity: capacity,
		onEvict:  onEvict,
	}
}

// ForKey returns the metric for key, creating it on first access with the
// given window geometry. Keys carry the owning rule's fingerprint, so every
// metric's geometry derives from its own rule's window.
func (r *Registry) ForKey(key Key, window time.Duration, bucketCount int) *ParamMetric {
	r.mu.RLock()
	m, ok := r.metrics[key]
	r.mu.RUnlock()
	if ok {
		return m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.metrics[key]; ok {
		return m
	}

	var evict EvictFunc
	if r.onEvict != nil {
		resource := key.Resource
		evict = func(value string) { r.onEvict(resource, value) }
	}
	m = NewParamMetric(window, bucketCount, r.capacity, evict)
	r.metrics[key] = m
	return m
}

// Lookup returns the metric for key without creating one.
func (r *Registry) Lookup(key Key) (*ParamMetric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metrics[key]
	return m, ok
}

// Len returns the number of tracked (resource, parameter index) pairs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metrics)
}

// ClearResource drops every metric belonging to resource. Used when the last
// rule for a resource is removed.
func (r *Registry) ClearResource(resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.metrics {
		if key.Resource == resource {
			delete(r.metrics, key)
		}
	}
}

// Clear drops every metric.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = make(map[Key]*ParamMetric)
}
