// Package promrecorder exports hotparam admission outcomes as Prometheus
// counters.
package promrecorder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alonecong/hotparam"
)

// Compile-time interface check.
var _ hotparam.Recorder = (*Recorder)(nil)

// Recorder counts passed and blocked requests per resource. Parameter
// values are deliberately not a label: their cardinality is unbounded.
type Recorder struct {
	passed    *prometheus.CounterVec
	blocked   *prometheus.CounterVec
	evictions *prometheus.CounterVec
}

// New creates a Recorder registered on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		passed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hotparam",
				Name:      "requests_passed_total",
				Help:      "Total number of calls admitted by hot-parameter flow control",
			},
			[]string{"resource"},
		),
		blocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hotparam",
				Name:      "requests_blocked_total",
				Help:      "Total number of calls blocked by hot-parameter flow control",
			},
			[]string{"resource"},
		),
		evictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hotparam",
				Name:      "value_evictions_total",
				Help:      "Total number of tracked parameter values evicted from the cache",
			},
			[]string{"resource"},
		),
	}
}

// Record implements hotparam.Recorder.
func (r *Recorder) Record(kind hotparam.EventKind, resource string, _ string) {
	switch kind {
	case hotparam.RequestPassed:
		r.passed.WithLabelValues(resource).Inc()
	case hotparam.RequestBlocked:
		r.blocked.WithLabelValues(resource).Inc()
	}
}

// ObserveEviction counts one cache eviction for resource. Wire it with
// hotparam.WithEvictionObserver:
//
//	rec := promrecorder.New(nil)
//	limiter := hotparam.New(
//		hotparam.WithRecorder(rec),
//		hotparam.WithEvictionObserver(rec.ObserveEviction),
//	)
func (r *Recorder) ObserveEviction(resource string, _ string) {
	r.evictions.WithLabelValues(resource).Inc()
}
