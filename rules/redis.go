package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alonecong/hotparam"
)

// Compile-time interface checks.
var (
	_ hotparam.Source         = (*RedisSource)(nil)
	_ hotparam.ChangeNotifier = (*RedisSource)(nil)
)

// RedisSource is a rule source backed by a JSON document in Redis. Reload
// fetches the document into an in-memory snapshot; Watch subscribes to a
// pub/sub channel and reloads on every message, so publishing after an
// update pushes new rules to every subscriber process.
type RedisSource struct {
	client  *redis.Client
	key     string
	channel string
	mem     *hotparam.MemorySource

	onReloadError func(error)
}

// RedisOption configures a RedisSource.
type RedisOption func(*RedisSource)

// WithChannel sets the pub/sub channel Watch subscribes to. Defaults to
// key + ":updates".
func WithChannel(channel string) RedisOption {
	return func(s *RedisSource) {
		s.channel = channel
	}
}

// WithOnReloadError sets a callback for reload failures inside Watch, which
// otherwise keeps the previous snapshot silently.
func WithOnReloadError(fn func(error)) RedisOption {
	return func(s *RedisSource) {
		s.onReloadError = fn
	}
}

// NewRedisSource creates a rule source reading the JSON rule document stored
// under key and loads the current rules. A missing key loads an empty rule
// set.
func NewRedisSource(ctx context.Context, client *redis.Client, key string, opts ...RedisOption) (*RedisSource, error) {
	s := &RedisSource{
		client:  client,
		key:     key,
		channel: key + ":updates",
		mem:     hotparam.NewMemorySource(),
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload fetches the rule document and swaps it into the snapshot.
func (s *RedisSource) Reload(ctx context.Context) error {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.mem.Load(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("hotparam/rules: redis get %s: %w", s.key, err)
	}

	var wire []ruleJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return fmt.Errorf("hotparam/rules: decode %s: %w", s.key, err)
	}

	loaded := make([]hotparam.Rule, 0, len(wire))
	for _, w := range wire {
		r, err := fromWire(w)
		if err != nil {
			return err
		}
		loaded = append(loaded, r)
	}

	s.mem.Load(loaded)
	return nil
}

// Publish stores the given rules as the document and notifies subscribers
// on the update channel.
func (s *RedisSource) Publish(ctx context.Context, rules []hotparam.Rule) error {
	wire := make([]ruleJSON, 0, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		wire = append(wire, toWire(r))
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("hotparam/rules: encode rules: %w", err)
	}

	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("hotparam/rules: redis set %s: %w", s.key, err)
	}
	if err := s.client.Publish(ctx, s.channel, "reload").Err(); err != nil {
		return fmt.Errorf("hotparam/rules: publish %s: %w", s.channel, err)
	}
	return nil
}

// Watch subscribes to the update channel and reloads the snapshot on every
// message. It blocks until the context is cancelled; reload failures keep
// the previous snapshot and are reported through WithOnReloadError.
func (s *RedisSource) Watch(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.Reload(ctx); err != nil && s.onReloadError != nil {
				s.onReloadError(err)
			}
		}
	}
}

// HasRules reports whether the snapshot holds rules for the resource.
func (s *RedisSource) HasRules(resource string) bool {
	return s.mem.HasRules(resource)
}

// RulesFor returns the snapshot's rules for the resource.
func (s *RedisSource) RulesFor(resource string) []hotparam.Rule {
	return s.mem.RulesFor(resource)
}

// OnChange registers fn to be notified when a reload changes a resource's
// rules.
func (s *RedisSource) OnChange(fn func(resource string)) {
	s.mem.OnChange(fn)
}
