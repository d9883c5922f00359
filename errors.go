package hotparam

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBlocked is the sentinel wrapped by every BlockError. Use errors.Is to
// distinguish an admission denial from an engine fault.
var ErrBlocked = errors.New("hotparam: admission blocked")

// BlockError reports that a call was denied because its parameter value
// exceeded the allowed rate. It identifies the offending resource, the rule
// that fired and the normalized value, and supports waiting for the window
// to free (Throttle behavior).
type BlockError struct {
	Resource Resource
	Rule     Rule
	// Value is the normalized key of the hot parameter value.
	Value string
	// Current is the window pass count observed before this call.
	Current int64
	// Queueable reports whether the rule's Throttle behavior advises
	// waiting: the time until the window frees is within MaxQueueingTime.
	Queueable bool

	retryAt time.Time
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("hotparam: blocked %s arg %d value %s (%d/%d)",
		e.Resource.Name, e.Rule.ParamIndex, e.Value, e.Current, e.Rule.thresholdFor(e.Value))
}

func (e *BlockError) Unwrap() error {
	return ErrBlocked
}

// RetryAt returns the earliest time the value's window will have fully
// expired, assuming no further traffic for that value.
func (e *BlockError) RetryAt() time.Time {
	return e.retryAt
}

// Wait blocks until the value's window frees or the context is cancelled.
// Intended for use with the Throttle behavior when Queueable is true.
func (e *BlockError) Wait(ctx context.Context) error {
	delay := time.Until(e.retryAt)
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
