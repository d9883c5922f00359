// Package rules provides persistent rule sources for the hotparam engine:
//
//   - [SQLiteSource]: rules stored in a SQLite table, reloaded on demand.
//   - [RedisSource]: rules stored as a JSON document in Redis, with pub/sub
//     change notification.
//
// Both keep an in-memory snapshot (a [hotparam.MemorySource]) that serves
// the engine's hot-path queries; loading from the backend swaps the
// snapshot atomically and never touches the admission path.
package rules

import (
	"fmt"
	"time"

	"github.com/alonecong/hotparam"
)

// ruleJSON is the wire form of a rule, shared by the Redis document and the
// SQLite overrides column.
type ruleJSON struct {
	Resource        string         `json:"resource"`
	ParamIndex      int            `json:"paramIndex"`
	Threshold       int64          `json:"threshold"`
	WindowMs        int64          `json:"windowMs"`
	Behavior        string         `json:"behavior,omitempty"`
	BurstCount      int64          `json:"burstCount,omitempty"`
	MaxQueueingMs   int64          `json:"maxQueueingMs,omitempty"`
	ValueThresholds []overrideJSON `json:"valueThresholds,omitempty"`
}

type overrideJSON struct {
	Value     any   `json:"value"`
	Threshold int64 `json:"threshold"`
}

func toWire(r hotparam.Rule) ruleJSON {
	w := ruleJSON{
		Resource:      r.Resource,
		ParamIndex:    r.ParamIndex,
		Threshold:     r.Threshold,
		WindowMs:      r.Window.Milliseconds(),
		Behavior:      behaviorName(r.Behavior),
		BurstCount:    r.BurstCount,
		MaxQueueingMs: r.MaxQueueingTime.Milliseconds(),
	}
	for _, vt := range r.ValueThresholds {
		w.ValueThresholds = append(w.ValueThresholds, overrideJSON(vt))
	}
	return w
}

func fromWire(w ruleJSON) (hotparam.Rule, error) {
	b, err := parseBehavior(w.Behavior)
	if err != nil {
		return hotparam.Rule{}, err
	}
	r := hotparam.Rule{
		Resource:        w.Resource,
		ParamIndex:      w.ParamIndex,
		Threshold:       w.Threshold,
		Window:          time.Duration(w.WindowMs) * time.Millisecond,
		Behavior:        b,
		BurstCount:      w.BurstCount,
		MaxQueueingTime: time.Duration(w.MaxQueueingMs) * time.Millisecond,
	}
	for _, vt := range w.ValueThresholds {
		r.ValueThresholds = append(r.ValueThresholds, hotparam.ValueThreshold(vt))
	}
	return r, nil
}

func behaviorName(b hotparam.Behavior) string {
	if b == hotparam.Throttle {
		return "throttle"
	}
	return "reject"
}

func parseBehavior(name string) (hotparam.Behavior, error) {
	switch name {
	case "", "reject":
		return hotparam.Reject, nil
	case "throttle":
		return hotparam.Throttle, nil
	default:
		return 0, fmt.Errorf("hotparam/rules: unknown behavior %q", name)
	}
}
