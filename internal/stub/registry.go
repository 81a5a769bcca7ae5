// Package stub implements a WireMock-like registry of request-matching
// rules that generate synthetic venue responses — the heart of the QUANTAF
// test harness.
package stub

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/message"
)

// Predicate reports whether msg matches a rule's registration criteria. A
// predicate that panics is treated as "no match" by FindMatch; it must
// never abort evaluation of later rules.
type Predicate func(msg *message.Message) bool

// ResponseGenerator derives a response Message from the request that
// triggered it.
type ResponseGenerator func(request *message.Message) *message.Message

// Rule is a single registered stub mapping: one predicate, one or more
// response generators, an optional delay, and a label.
type Rule struct {
	predicate  Predicate
	generators []ResponseGenerator
	delay      time.Duration
	label      string

	callCount atomic.Int64
}

// Matches reports whether msg satisfies the rule's predicate, swallowing any
// panic raised by the predicate and treating it as a non-match.
func (r *Rule) Matches(msg *message.Message) (matched bool) {
	defer func() {
		if rec := recover(); rec != nil {
			matched = false
		}
	}()
	return r.predicate(msg)
}

// Delay returns the configured response delay.
func (r *Rule) Delay() time.Duration { return r.delay }

// Label returns the rule's human-readable description.
func (r *Rule) Label() string { return r.label }

// CallCount returns the number of times GenerateResponse has been invoked.
func (r *Rule) CallCount() int64 { return r.callCount.Load() }

// GenerateResponse invokes the generator for request at this invocation's
// position in the sequence. Each call is assigned a unique, monotonically
// advancing invocation number via an atomic counter; invocation i < len
// uses generator i, invocation i >= len uses the last generator, which is
// sticky for every subsequent call. Safe for concurrent use: two concurrent
// invocations observe distinct invocation numbers, and the combined call
// count equals the number of invocations.
func (r *Rule) GenerateResponse(request *message.Message) *message.Message {
	invocation := r.callCount.Add(1) - 1
	last := int64(len(r.generators) - 1)
	idx := invocation
	if idx > last {
		idx = last
	}
	return r.generators[idx](request)
}

// Registry is a thread-safe, ordered collection of stub rules. Rules are
// evaluated in registration order by FindMatch.
type Registry struct {
	mu     sync.RWMutex
	rules  []*Rule
	logger *slog.Logger
}

// New creates an empty registry. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// When starts building a new rule with the given matching predicate.
func (reg *Registry) When(predicate Predicate) *RuleBuilder {
	return &RuleBuilder{registry: reg, predicate: predicate, label: "unnamed stub"}
}

// FindMatch scans rules in registration order and returns the first whose
// predicate matches msg, or nil if none match.
func (reg *Registry) FindMatch(msg *message.Message) *Rule {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for _, r := range reg.rules {
		if r.Matches(msg) {
			reg.logger.Debug("stub match found", slog.String("label", r.Label()))
			return r
		}
	}
	return nil
}

// Reset empties the rule list. A FindMatch that began before Reset may
// still return a previously matched rule; this is an accepted race.
func (reg *Registry) Reset() {
	reg.mu.Lock()
	reg.rules = nil
	reg.mu.Unlock()
	reg.logger.Info("stub registry reset")
}

// Size returns the current rule count.
func (reg *Registry) Size() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rules)
}

// Mappings returns a snapshot copy of the registered rules.
func (reg *Registry) Mappings() []*Rule {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Rule, len(reg.rules))
	copy(out, reg.rules)
	return out
}

// RuleBuilder accumulates a rule's response generators, delay, and label
// before Register appends it to the registry.
type RuleBuilder struct {
	registry   *Registry
	predicate  Predicate
	generators []ResponseGenerator
	delay      time.Duration
	label      string
}

// RespondWith adds the (first) response generator.
func (b *RuleBuilder) RespondWith(gen ResponseGenerator) *RuleBuilder {
	b.generators = append(b.generators, gen)
	return b
}

// ThenRespondWith adds an additional response generator for sequential
// (multi-shot) responses. After all prior generators are exhausted, the
// last one registered takes over permanently.
func (b *RuleBuilder) ThenRespondWith(gen ResponseGenerator) *RuleBuilder {
	b.generators = append(b.generators, gen)
	return b
}

// WithDelay sets the response delay.
func (b *RuleBuilder) WithDelay(d time.Duration) *RuleBuilder {
	b.delay = d
	return b
}

// DescribedAs sets a human-readable label.
func (b *RuleBuilder) DescribedAs(label string) *RuleBuilder {
	b.label = label
	return b
}

// Register validates and appends the rule to the registry, returning
// ErrEmptyResponseSequence if no generator was configured.
func (b *RuleBuilder) Register() (*Rule, error) {
	if len(b.generators) == 0 {
		return nil, domain.ErrEmptyResponseSequence
	}
	rule := &Rule{
		predicate:  b.predicate,
		generators: b.generators,
		delay:      b.delay,
		label:      b.label,
	}
	b.registry.mu.Lock()
	b.registry.rules = append(b.registry.rules, rule)
	count := len(b.registry.rules)
	b.registry.mu.Unlock()
	b.registry.logger.Info("registered stub mapping", slog.String("label", b.label), slog.Int("total", count))
	return rule, nil
}
