package promrecorder

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alonecong/hotparam"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	rec.Record(hotparam.RequestPassed, "orders", "")
	rec.Record(hotparam.RequestPassed, "orders", "")
	rec.Record(hotparam.RequestBlocked, "orders", "s:userA")
	rec.Record(hotparam.RequestPassed, "users", "")

	if got := testutil.ToFloat64(rec.passed.WithLabelValues("orders")); got != 2 {
		t.Errorf("orders passed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.blocked.WithLabelValues("orders")); got != 1 {
		t.Errorf("orders blocked = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.passed.WithLabelValues("users")); got != 1 {
		t.Errorf("users passed = %v, want 1", got)
	}
}

func TestRecorderEvictions(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	rec.ObserveEviction("orders", "s:userA")
	rec.ObserveEviction("orders", "s:userB")

	if got := testutil.ToFloat64(rec.evictions.WithLabelValues("orders")); got != 2 {
		t.Errorf("orders evictions = %v, want 2", got)
	}
}

func TestRecorderWithLimiter(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := New(reg)

	limiter := hotparam.New(
		hotparam.WithRecorder(rec),
		hotparam.WithEvictionObserver(rec.ObserveEviction),
	)
	limiter.LoadRules(hotparam.Rule{
		Resource:   "orders",
		ParamIndex: 0,
		Threshold:  1,
		Window:     time.Second,
	})

	res := hotparam.Resource{Name: "orders"}
	limiter.Entry(res, "userA")
	limiter.Entry(res, "userA")

	if got := testutil.ToFloat64(rec.passed.WithLabelValues("orders")); got != 1 {
		t.Errorf("passed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.blocked.WithLabelValues("orders")); got != 1 {
		t.Errorf("blocked = %v, want 1", got)
	}
}
