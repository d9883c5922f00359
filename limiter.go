package hotparam

import (
	"errors"
	"time"

	"github.com/alonecong/hotparam/metric"
)

// defaultBucketCount is the number of buckets a rule's window is split into.
const defaultBucketCount = 10

// Limiter is the hot-parameter admission engine. For each call to a
// protected resource it inspects the argument positions named by the active
// rules and decides, per distinct argument value, whether the call may
// proceed.
//
// A Limiter is safe for concurrent use; Entry never blocks.
type Limiter struct {
	source   Source
	registry *metric.Registry
	recorder Recorder

	capacity    int
	bucketCount int
	onEvict     func(resource, value string)

	now func() time.Time // overridable in tests
}

// New creates a Limiter with the given options. If no rule source is
// provided, an empty MemorySource is used and rules can be supplied through
// LoadRules.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		capacity:    metric.DefaultCapacity,
		bucketCount: defaultBucketCount,
		now:         time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	if l.source == nil {
		l.source = NewMemorySource()
	}
	if l.registry == nil {
		l.registry = metric.NewRegistry(l.capacity, l.onEvict)
	}
	if cn, ok := l.source.(ChangeNotifier); ok {
		cn.OnChange(l.rulesChanged)
	}
	return l
}

// rulesChanged drops tracked statistics for a resource once no rule targets
// it any longer.
func (l *Limiter) rulesChanged(resource string) {
	if !l.source.HasRules(resource) {
		l.registry.ClearResource(resource)
	}
}

// LoadRules replaces the active rule set. It is a convenience for limiters
// using the default in-memory source; limiters wired to an external source
// must load rules through that source instead.
func (l *Limiter) LoadRules(rules ...Rule) error {
	mem, ok := l.source.(*MemorySource)
	if !ok {
		return errors.New("hotparam: rule source is external; load rules through it")
	}
	mem.Load(rules)
	return nil
}

// Entry decides whether a call to the resource with the given arguments may
// proceed. It returns nil when the call passes every applicable rule and a
// *BlockError on the first rule that denies it. Calls to resources without
// active rules pass unconditionally with zero tracking overhead.
//
// Rules that are malformed, target an argument position the call does not
// have, or target a non-countable argument value are skipped, never failing
// the call. An internal fault during evaluation degrades that single check
// to a pass.
func (l *Limiter) Entry(res Resource, args ...any) error {
	if !l.source.HasRules(res.Name) {
		return nil
	}

	err := l.evaluate(res, args)
	if err != nil {
		l.record(RequestBlocked, res.Name, err.Value)
		return err
	}
	l.record(RequestPassed, res.Name, "")
	return nil
}

// Exit is the pass-through exit notification paired with Entry. The minimal
// engine keeps no per-call state, so it only exists to keep entry/exit
// bookkeeping balanced for pipeline composition.
func (l *Limiter) Exit(res Resource, args ...any) {}

func (l *Limiter) evaluate(res Resource, args []any) (blockErr *BlockError) {
	// Fail open: a fault in a single check must not propagate into
	// unrelated traffic.
	defer func() {
		if recover() != nil {
			blockErr = nil
		}
	}()

	now := l.now()
	for _, rule := range l.source.RulesFor(res.Name) {
		if rule.Validate() != nil {
			continue
		}
		if rule.ParamIndex >= len(args) {
			continue
		}
		key, ok := paramKey(args[rule.ParamIndex])
		if !ok {
			continue
		}

		m := l.registry.ForKey(
			metric.Key{Resource: res.Name, ParamIndex: rule.ParamIndex, Rule: rule.statKey()},
			rule.Window, l.bucketCount,
		)
		passed, current := checkRule(m, rule, key, now)
		if passed {
			continue
		}

		retryAt := m.Counter(key).WindowReset(now.UnixMilli())
		return &BlockError{
			Resource:  res,
			Rule:      rule,
			Value:     key,
			Current:   current,
			Queueable: rule.Behavior == Throttle && (rule.MaxQueueingTime <= 0 || retryAt.Sub(now) <= rule.MaxQueueingTime),
			retryAt:   retryAt,
		}
	}
	return nil
}

func (l *Limiter) record(kind EventKind, resource, value string) {
	if l.recorder != nil {
		l.recorder.Record(kind, resource, value)
	}
}

// Registry exposes the limiter's metric registry for diagnostics and tests.
func (l *Limiter) Registry() *metric.Registry {
	return l.registry
}

// ClearResource drops all tracked statistics for the resource.
func (l *Limiter) ClearResource(res Resource) {
	l.registry.ClearResource(res.Name)
}
