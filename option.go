package hotparam

import "github.com/alonecong/hotparam/metric"

// Option configures a Limiter.
type Option func(*Limiter)

// WithRuleSource sets the rule source consulted on every call. If the source
// also implements ChangeNotifier, the limiter subscribes and drops tracked
// statistics for resources whose rules are removed.
func WithRuleSource(s Source) Option {
	return func(l *Limiter) {
		l.source = s
	}
}

// WithRecorder sets the recorder notified of every admission outcome.
func WithRecorder(r Recorder) Option {
	return func(l *Limiter) {
		l.recorder = r
	}
}

// WithRegistry sets the metric registry. Sharing one registry between
// limiters shares their statistics; the default is a private registry.
func WithRegistry(r *metric.Registry) Option {
	return func(l *Limiter) {
		l.registry = r
	}
}

// WithCacheCapacity bounds how many distinct parameter values are tracked
// per (resource, argument index) pair. When the bound is reached the least
// recently used value is evicted. Capped at metric.MaxCapacity.
func WithCacheCapacity(n int) Option {
	return func(l *Limiter) {
		l.capacity = n
	}
}

// WithBucketCount sets how many buckets each rule's window is split into.
// More buckets track the rolling window more precisely at slightly more
// memory per value.
func WithBucketCount(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.bucketCount = n
		}
	}
}

// WithEvictionObserver registers fn to be called whenever a tracked value is
// evicted to admit a new one. fn runs on the admission hot path and must be
// cheap.
func WithEvictionObserver(fn func(resource, value string)) Option {
	return func(l *Limiter) {
		l.onEvict = fn
	}
}
