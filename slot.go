package hotparam

import "context"

// EntryContext carries one in-flight call through a slot chain.
type EntryContext struct {
	Resource Resource
	Args     []any
}

// Slot is one admission-control stage in a processing pipeline. Entry runs
// before the guarded call; a non-nil error denies the call. Exit runs after
// the call completes, in reverse slot order.
type Slot interface {
	Entry(ctx context.Context, e *EntryContext) error
	Exit(ctx context.Context, e *EntryContext)
}

// Chain composes slots into an ordered pipeline. Entry runs each slot in
// order and stops at the first denial, exiting the slots already entered so
// their bookkeeping stays balanced. Exit runs all slots in reverse order.
//
// Compose the chain once at startup; it is not safe to append slots while
// calls are in flight.
type Chain struct {
	slots []Slot
}

// NewChain creates a chain running the given slots in order.
func NewChain(slots ...Slot) *Chain {
	return &Chain{slots: slots}
}

// Append adds a slot to the end of the chain.
func (c *Chain) Append(s Slot) {
	c.slots = append(c.slots, s)
}

// Entry runs the chain for one call. On a denial the error of the denying
// slot is returned and the guarded call must not execute.
func (c *Chain) Entry(ctx context.Context, e *EntryContext) error {
	for i, s := range c.slots {
		if err := s.Entry(ctx, e); err != nil {
			for j := i - 1; j >= 0; j-- {
				c.slots[j].Exit(ctx, e)
			}
			return err
		}
	}
	return nil
}

// Exit notifies every slot, in reverse order, that the call completed.
func (c *Chain) Exit(ctx context.Context, e *EntryContext) {
	for i := len(c.slots) - 1; i >= 0; i-- {
		c.slots[i].Exit(ctx, e)
	}
}

// ParamFlowSlot adapts a Limiter into a pipeline Slot.
type ParamFlowSlot struct {
	Limiter *Limiter
}

// NewParamFlowSlot creates the hot-parameter admission slot for a limiter.
func NewParamFlowSlot(l *Limiter) *ParamFlowSlot {
	return &ParamFlowSlot{Limiter: l}
}

func (s *ParamFlowSlot) Entry(_ context.Context, e *EntryContext) error {
	return s.Limiter.Entry(e.Resource, e.Args...)
}

func (s *ParamFlowSlot) Exit(_ context.Context, e *EntryContext) {
	s.Limiter.Exit(e.Resource, e.Args...)
}
