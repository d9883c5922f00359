package rules

import (
	"context"
	"testing"
	"time"

	"github.com/alonecong/hotparam"
)

func newTestSQLiteSource(t *testing.T) *SQLiteSource {
	t.Helper()
	s, err := NewSQLiteSource(context.Background(), ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSourceRoundTrip(t *testing.T) {
	s := newTestSQLiteSource(t)
	ctx := context.Background()

	rule := hotparam.Rule{
		Resource:        "GET:/api/orders",
		ParamIndex:      0,
		Threshold:       5,
		Window:          time.Second,
		Behavior:        hotparam.Throttle,
		BurstCount:      2,
		MaxQueueingTime: 500 * time.Millisecond,
		ValueThresholds: []hotparam.ValueThreshold{
			{Value: "vip", Threshold: 1000},
		},
	}

	if err := s.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	if !s.HasRules("GET:/api/orders") {
		t.Fatal("saved resource reports no rules")
	}
	got := s.RulesFor("GET:/api/orders")
	if len(got) != 1 {
		t.Fatalf("got %d rules, want 1", len(got))
	}

	r := got[0]
	if r.Threshold != 5 || r.Window != time.Second || r.Behavior != hotparam.Throttle {
		t.Errorf("rule mismatch: %+v", r)
	}
	if r.BurstCount != 2 || r.MaxQueueingTime != 500*time.Millisecond {
		t.Errorf("burst/queueing mismatch: %+v", r)
	}
	if len(r.ValueThresholds) != 1 || r.ValueThresholds[0].Threshold != 1000 {
		t.Errorf("overrides mismatch: %+v", r.ValueThresholds)
	}
}

func TestSQLiteSourceOverrideKeysSurviveJSON(t *testing.T) {
	s := newTestSQLiteSource(t)
	ctx := context.Background()

	// An integer override decodes from JSON as float64; the engine must
	// still match it against integer call arguments.
	if err := s.Save(ctx, hotparam.Rule{
		Resource:   "orders",
		ParamIndex: 0,
		Threshold:  1,
		Window:     time.Minute,
		ValueThresholds: []hotparam.ValueThreshold{
			{Value: 42, Threshold: 1000},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	limiter := hotparam.New(hotparam.WithRuleSource(s))
	res := hotparam.Resource{Name: "orders"}
	for i := 0; i < 10; i++ {
		if err := limiter.Entry(res, 42); err != nil {
			t.Fatalf("call %d: override for 42 not honored after reload: %v", i, err)
		}
	}
}

func TestSQLiteSourceUpsert(t *testing.T) {
	s := newTestSQLiteSource(t)
	ctx := context.Background()

	rule := hotparam.Rule{Resource: "orders", ParamIndex: 0, Threshold: 5, Window: time.Second}
	if err := s.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}
	rule.Threshold = 50
	if err := s.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	got := s.RulesFor("orders")
	if len(got) != 1 {
		t.Fatalf("got %d rules after upsert, want 1", len(got))
	}
	if got[0].Threshold != 50 {
		t.Errorf("threshold = %d, want 50", got[0].Threshold)
	}
}

func TestSQLiteSourceUpsertReplacesChangedWindow(t *testing.T) {
	s := newTestSQLiteSource(t)
	ctx := context.Background()

	rule := hotparam.Rule{Resource: "orders", ParamIndex: 0, Threshold: 5, Window: time.Second}
	if err := s.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}
	// Rewriting the same rule with a new window must replace the stored row,
	// not accumulate a second rule for the same parameter.
	rule.Window = time.Minute
	if err := s.Save(ctx, rule); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	got := s.RulesFor("orders")
	if len(got) != 1 {
		t.Fatalf("got %d rules after window change, want 1", len(got))
	}
	if got[0].Window != time.Minute {
		t.Errorf("window = %v, want %v", got[0].Window, time.Minute)
	}
}

func TestSQLiteSourceDelete(t *testing.T) {
	s := newTestSQLiteSource(t)
	ctx := context.Background()

	s.Save(ctx, hotparam.Rule{Resource: "orders", ParamIndex: 0, Threshold: 5, Window: time.Second})
	s.Reload(ctx)

	var changed []string
	s.OnChange(func(resource string) { changed = append(changed, resource) })

	if err := s.Delete(ctx, "orders"); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	if s.HasRules("orders") {
		t.Error("deleted resource still reports rules")
	}
	if len(changed) == 0 {
		t.Error("no change notification after delete+reload")
	}
}

func TestSQLiteSourceRejectsInvalidRule(t *testing.T) {
	s := newTestSQLiteSource(t)

	err := s.Save(context.Background(), hotparam.Rule{Resource: "orders", Threshold: -1, Window: time.Second})
	if err == nil {
		t.Fatal("Save accepted an invalid rule")
	}
}
