package metric

import (
	"sync/atomic"
	"time"
)

// RollingCounter tracks pass, block and exceeded counts for a single
// parameter value over a rolling time window. The window is divided into a
// fixed number of equal buckets; a bucket whose recorded start time has
// fallen out of the window is reset in place on the next access, so expired
// data is reclaimed without a background sweep.
//
// All operations are O(1), lock-free and safe for concurrent use. Counts are
// approximate under contention: a reset racing an increment may drop that
// single increment, which is within the engine's accuracy contract.
type RollingCounter struct {
	bucketSpanMs int64
	windowMs     int64
	buckets      []counterBucket
}

type counterBucket struct {
	start    atomic.Int64 // bucket start, unix milliseconds
	passed   atomic.Int64
	blocked  atomic.Int64
	exceeded atomic.Int64
}

// NewRollingCounter creates a counter covering the given window split into
// bucketCount equal buckets. bucketCount must be > 0 and the window must be
// divisible into at least 1ms buckets.
func NewRollingCounter(window time.Duration, bucketCount int) *RollingCounter {
	if bucketCount <= 0 {
		bucketCount = 1
	}
	spanMs := window.Milliseconds() / int64(bucketCount)
	if spanMs <= 0 {
		spanMs = 1
	}
	return &RollingCounter{
		bucketSpanMs: spanMs,
		windowMs:     spanMs * int64(bucketCount),
		buckets:      make([]counterBucket, bucketCount),
	}
}

// current returns the bucket for nowMs, resetting it first if its recorded
// start time is stale. Whichever caller wins the CAS performs the reset;
// losers observe the fresh bucket.
func (c *RollingCounter) current(nowMs int64) *counterBucket {
	idx := (nowMs / c.bucketSpanMs) % int64(len(c.buckets))
	b := &c.buckets[idx]
	start := nowMs - nowMs%c.bucketSpanMs

	for {
		old := b.start.Load()
		if old >= start {
			return b
		}
		if b.start.CompareAndSwap(old, start) {
			b.passed.Store(0)
			b.blocked.Store(0)
			b.exceeded.Store(0)
			return b
		}
	}
}

// AddPass records one admitted occurrence at nowMs.
func (c *RollingCounter) AddPass(nowMs int64) {
	c.current(nowMs).passed.Add(1)
}

// AddBlock records one blocked occurrence at nowMs.
func (c *RollingCounter) AddBlock(nowMs int64) {
	c.current(nowMs).blocked.Add(1)
}

// AddExceeded records one tolerated over-threshold occurrence at nowMs.
func (c *RollingCounter) AddExceeded(nowMs int64) {
	c.current(nowMs).exceeded.Add(1)
}

// PassCount returns the approximate number of admitted occurrences within
// the window ending at nowMs.
func (c *RollingCounter) PassCount(nowMs int64) int64 {
	return c.sum(nowMs, func(b *counterBucket) int64 { return b.passed.Load() })
}

// BlockCount returns the approximate number of blocked occurrences within
// the window ending at nowMs.
func (c *RollingCounter) BlockCount(nowMs int64) int64 {
	return c.sum(nowMs, func(b *counterBucket) int64 { return b.blocked.Load() })
}

// ExceededCount returns the approximate number of tolerated over-threshold
// occurrences within the window ending at nowMs.
func (c *RollingCounter) ExceededCount(nowMs int64) int64 {
	return c.sum(nowMs, func(b *counterBucket) int64 { return b.exceeded.Load() })
}

func (c *RollingCounter) sum(nowMs int64, read func(*counterBucket) int64) int64 {
	oldest := nowMs - c.windowMs
	var total int64
	for i := range c.buckets {
		b := &c.buckets[i]
		if b.start.Load() <= oldest {
			continue
		}
		total += read(b)
	}
	return total
}

// WindowReset returns the earliest time at which every bucket live at nowMs
// will have expired, assuming no further traffic.
func (c *RollingCounter) WindowReset(nowMs int64) time.Time {
	start := nowMs - nowMs%c.bucketSpanMs
	return time.UnixMilli(start + c.windowMs)
}
