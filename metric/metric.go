package metric

import "time"

// ParamMetric holds the rolling statistics for every tracked value of one
// (resource, parameter index) pair. Counters are created lazily per value
// and bounded by the cache capacity; under eviction pressure a cold value
// that is seen again starts from a fresh counter.
type ParamMetric struct {
	window      time.Duration
	bucketCount int
	cache       *ValueCache
}

// NewParamMetric creates a metric whose per-value counters cover window
// split into bucketCount buckets, tracking at most capacity distinct values.
func NewParamMetric(window time.Duration, bucketCount, capacity int, onEvict EvictFunc) *ParamMetric {
	return &ParamMetric{
		window:      window,
		bucketCount: bucketCount,
		cache:       NewValueCache(capacity, onEvict),
	}
}

// Counter returns the rolling counter for value, creating it if unseen.
func (m *ParamMetric) Counter(value string) *RollingCounter {
	return m.cache.GetOrCreate(value, func() *RollingCounter {
		return NewRollingCounter(m.window, m.bucketCount)
	})
}

// AddPass records one admitted call for value.
func (m *ParamMetric) AddPass(value string, now time.Time) {
	m.Counter(value).AddPass(now.UnixMilli())
}

// AddBlock records one blocked call for value.
func (m *ParamMetric) AddBlock(value string, now time.Time) {
	m.Counter(value).AddBlock(now.UnixMilli())
}

// AddExceeded records one tolerated over-threshold call for value.
func (m *ParamMetric) AddExceeded(value string, now time.Time) {
	m.Counter(value).AddExceeded(now.UnixMilli())
}

// PassCount returns the admitted calls for value in the current window.
// An untracked value reports zero without creating a counter.
func (m *ParamMetric) PassCount(value string, now time.Time) int64 {
	c, ok := m.cache.Get(value)
	if !ok {
		return 0
	}
	return c.PassCount(now.UnixMilli())
}

// BlockCount returns the blocked calls for value in the current window.
func (m *ParamMetric) BlockCount(value string, now time.Time) int64 {
	c, ok := m.cache.Get(value)
	if !ok {
		return 0
	}
	return c.BlockCount(now.UnixMilli())
}

// ExceededCount returns the tolerated over-threshold calls for value in the
// current window.
func (m *ParamMetric) ExceededCount(value string, now time.Time) int64 {
	c, ok := m.cache.Get(value)
	if !ok {
		return 0
	}
	return c.ExceededCount(now.UnixMilli())
}

// Clear drops every tracked value.
func (m *ParamMetric) Clear() {
	m.cache.Clear()
}

// Len returns the number of tracked values.
func (m *ParamMetric) Len() int {
	return m.cache.Len()
}
