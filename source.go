package hotparam

import "sync"

// Source supplies the active rules for a resource. The engine treats each
// query's result as a momentarily authoritative snapshot; it never mutates
// or persists rules. Implementations must be safe for concurrent reads on
// the hot path — HasRules in particular guards the engine's fast path and
// should be cheap.
type Source interface {
	// HasRules reports whether any rule targets the resource.
	HasRules(resource string) bool
	// RulesFor returns the rules for the resource in evaluation order.
	RulesFor(resource string) []Rule
}

// ChangeNotifier is implemented by sources that can announce rule changes.
// The Limiter subscribes so it can drop tracked statistics for resources
// whose rules were removed.
type ChangeNotifier interface {
	// OnChange registers fn to be called with the name of each resource
	// whose rule set changed.
	OnChange(fn func(resource string))
}

// MemorySource is an in-memory rule source. It is the default source of a
// Limiter and the snapshot layer behind the persistent sources in the rules
// package. Safe for concurrent use.
type MemorySource struct {
	mu        sync.RWMutex
	rules     map[string][]Rule
	listeners []func(resource string)
}

// NewMemorySource creates an empty in-memory rule source.
func NewMemorySource() *MemorySource {
	return &MemorySource{rules: make(map[string][]Rule)}
}

// Load replaces the full rule set and notifies listeners for every resource
// whose rules were added, removed or replaced. Rule order within a resource
// is preserved.
func (s *MemorySource) Load(rules []Rule) {
	next := make(map[string][]Rule, len(rules))
	for _, r := range rules {
		next[r.Resource] = append(next[r.Resource], r)
	}

	s.mu.Lock()
	prev := s.rules
	s.rules = next
	listeners := s.listeners
	s.mu.Unlock()

	changed := make([]string, 0, len(prev)+len(next))
	for name := range prev {
		changed = append(changed, name)
	}
	for name := range next {
		if _, ok := prev[name]; !ok {
			changed = append(changed, name)
		}
	}
	for _, fn := range listeners {
		for _, name := range changed {
			fn(name)
		}
	}
}

// HasRules reports whether any rule targets the resource.
func (s *MemorySource) HasRules(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules[resource]) > 0
}

// RulesFor returns a copy of the rules for the resource in load order.
func (s *MemorySource) RulesFor(resource string) []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := s.rules[resource]
	if len(rules) == 0 {
		return nil
	}
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Rules returns a copy of every loaded rule.
func (s *MemorySource) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Rule
	for _, rules := range s.rules {
		out = append(out, rules...)
	}
	return out
}

// OnChange registers fn to be called with each changed resource name on
// every Load.
func (s *MemorySource) OnChange(fn func(resource string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
