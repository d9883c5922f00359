package hotparam

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Behavior defines what happens to a call whose parameter value is over its
// threshold.
type Behavior int

const (
	// Reject blocks the call immediately.
	Reject Behavior = iota
	// Throttle blocks the call but marks the returned BlockError queueable
	// when the wait until the window frees is within the rule's
	// MaxQueueingTime, so callers can opt into waiting via Wait.
	Throttle
)

func (b Behavior) String() string {
	switch b {
	case Reject:
		return "Reject"
	case Throttle:
		return "Throttle"
	default:
		return fmt.Sprintf("Behavior(%d)", int(b))
	}
}

// ValueThreshold gives one specific parameter value its own threshold,
// bypassing the rule's general threshold for that value.
type ValueThreshold struct {
	Value     any
	Threshold int64
}

// Rule limits how often a single value of one call argument may be seen on a
// resource within a rolling window. Multiple rules may target the same
// resource and argument; they are evaluated in order and the first block
// wins.
type Rule struct {
	// Resource is the name of the protected resource this rule applies to.
	Resource string
	// ParamIndex is the zero-based position of the inspected argument.
	ParamIndex int
	// Threshold is the maximum admitted occurrences of a single value per
	// window. Zero is a valid "never admit" threshold.
	Threshold int64
	// Window is the rolling window length.
	Window time.Duration
	// Behavior selects Reject or Throttle handling for blocked calls.
	Behavior Behavior
	// BurstCount, when positive, is the number of over-threshold calls
	// tolerated before blocking begins.
	BurstCount int64
	// MaxQueueingTime bounds how long a throttled caller is advised to
	// queue. Zero means any wait is acceptable.
	MaxQueueingTime time.Duration
	// ValueThresholds are ordered per-value overrides; the first entry
	// matching the call's value supplies the threshold.
	ValueThresholds []ValueThreshold
}

// Validate reports whether the rule is well formed. Malformed rules are
// skipped at evaluation time so a bad rule never fails the traffic it was
// meant to protect.
func (r Rule) Validate() error {
	if r.Resource == "" {
		return errors.New("hotparam: rule has empty resource")
	}
	if r.ParamIndex < 0 {
		return fmt.Errorf("hotparam: rule for %s has negative param index %d", r.Resource, r.ParamIndex)
	}
	if r.Threshold < 0 {
		return fmt.Errorf("hotparam: rule for %s has negative threshold %d", r.Resource, r.Threshold)
	}
	if r.Window <= 0 {
		return fmt.Errorf("hotparam: rule for %s has non-positive window %v", r.Resource, r.Window)
	}
	if r.BurstCount < 0 {
		return fmt.Errorf("hotparam: rule for %s has negative burst count %d", r.Resource, r.BurstCount)
	}
	return nil
}

// statKey returns a canonical fingerprint of every field that affects
// counting. It names the rule's counter space in the metric registry, so
// rules sharing a (resource, parameter index) pair are evaluated against
// independent statistics and a rule keeps its counters across reloads as
// long as it is unchanged.
func (r Rule) statKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d|%d|%d|%d",
		r.Threshold, r.Window.Milliseconds(), int(r.Behavior), r.BurstCount, r.MaxQueueingTime.Milliseconds())
	for _, vt := range r.ValueThresholds {
		k, ok := paramKey(vt.Value)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "|%s=%d", k, vt.Threshold)
	}
	return b.String()
}

// thresholdFor returns the threshold applying to the normalized value key,
// honoring per-value overrides in order.
func (r Rule) thresholdFor(key string) int64 {
	for _, vt := range r.ValueThresholds {
		k, ok := paramKey(vt.Value)
		if !ok {
			continue
		}
		if k == key {
			return vt.Threshold
		}
	}
	return r.Threshold
}

func (r Rule) String() string {
	return fmt.Sprintf("Rule{%s arg=%d threshold=%d window=%v %s}",
		r.Resource, r.ParamIndex, r.Threshold, r.Window, r.Behavior)
}
