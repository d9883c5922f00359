package hotparam

import (
	"time"

	"github.com/alonecong/hotparam/metric"
)

// checkRule evaluates one rule against the normalized value key and records
// the outcome on the metric. It returns whether the call passed and the
// window pass count read before this call was added.
//
// The comparison is >= on the pre-read count, so the call that brings the
// count exactly to the threshold is the last one admitted. A rule with a
// positive BurstCount tolerates that many over-threshold calls per window;
// the tolerance debt lives in the same rolling buckets as the counts, so it
// clears only when the window naturally expires.
func checkRule(m *metric.ParamMetric, rule Rule, key string, now time.Time) (passed bool, current int64) {
	threshold := rule.thresholdFor(key)
	nowMs := now.UnixMilli()

	c := m.Counter(key)
	current = c.PassCount(nowMs)
	if current < threshold {
		c.AddPass(nowMs)
		return true, current
	}

	if rule.BurstCount > 0 && c.ExceededCount(nowMs) < rule.BurstCount {
		c.AddExceeded(nowMs)
		c.AddPass(nowMs)
		return true, current
	}

	c.AddBlock(nowMs)
	return false, current
}
