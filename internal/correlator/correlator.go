// Package correlator implements the initiator-side request/response
// matching: outstanding requests are registered under a correlation key,
// and inbound messages complete the matching slot exactly once (spec.md
// §4.5).
package correlator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/message"
	"github.com/vinipx/quantaf/internal/transport"
)

// DefaultTimeout is the wait applied by SendAndAwait when none is given.
const DefaultTimeout = 30 * time.Second

// KeyExtractor pulls the correlation key out of an inbound message, or
// reports ok=false if the message carries none.
type KeyExtractor func(msg *message.Message) (key string, ok bool)

// slot is a one-shot completion handle: exactly one of complete or
// timeout/removal ever fires for it.
type slot struct {
	done chan struct{}
	msg  *message.Message
	err  error
	once sync.Once
}

func newSlot() *slot {
	return &slot{done: make(chan struct{})}
}

func (s *slot) complete(msg *message.Message, err error) (fired bool) {
	s.once.Do(func() {
		s.msg = msg
		s.err = err
		close(s.done)
		fired = true
	})
	return fired
}

// Correlator maps outstanding request keys to completion slots.
type Correlator struct {
	extractKey KeyExtractor
	sink       transport.Sink
	session    transport.Session
	logger     *slog.Logger

	mu    sync.Mutex
	slots map[string]*slot

	sessionActive bool
}

// New creates a Correlator that extracts keys with extractKey and sends
// outbound requests through sink.
func New(extractKey KeyExtractor, sink transport.Sink, logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Correlator{
		extractKey: extractKey,
		sink:       sink,
		logger:     logger,
		slots:      make(map[string]*slot),
	}
}

// BindSession marks a transport session as active, required before Send or
// SendAndAwait will succeed.
func (c *Correlator) BindSession(session transport.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	c.sessionActive = true
}

// UnbindSession clears the active session.
func (c *Correlator) UnbindSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionActive = false
}

// Send forwards msg without registering a completion slot.
func (c *Correlator) Send(ctx context.Context, msg *message.Message) error {
	c.mu.Lock()
	if !c.sessionActive {
		c.mu.Unlock()
		return fmt.Errorf("%w: no transport session bound", domain.ErrNoSession)
	}
	session := c.session
	c.mu.Unlock()
	return c.sink.Send(ctx, msg, session)
}

// SendAndAwait pre-registers a completion slot for key, forwards msg, and
// blocks until a matching inbound message is delivered or timeout elapses.
// On timeout the slot is removed atomically; a later-arriving message with
// the same key is dropped by Deliver. Two concurrent SendAndAwait calls
// with the same key fail the second with ErrDuplicateKey.
func (c *Correlator) SendAndAwait(ctx context.Context, msg *message.Message, key string, timeout time.Duration) (*message.Message, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c.mu.Lock()
	if !c.sessionActive {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: no transport session bound", domain.ErrNoSession)
	}
	if _, exists := c.slots[key]; exists {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: a request is already outstanding for key %q", domain.ErrDuplicateKey, key)
	}
	s := newSlot()
	c.slots[key] = s
	session := c.session
	c.mu.Unlock()

	if err := c.sink.Send(ctx, msg, session); err != nil {
		c.removeSlot(key, s)
		return nil, fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		return s.msg, s.err
	case <-timer.C:
		c.removeSlot(key, s)
		return nil, fmt.Errorf("%w: no response for key %q within %s", domain.ErrTimeout, key, timeout)
	case <-ctx.Done():
		c.removeSlot(key, s)
		return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, ctx.Err())
	}
}

// removeSlot deletes key's slot from the map iff it is still s — guards
// against racing with a Deliver that already replaced or completed it.
func (c *Correlator) removeSlot(key string, s *slot) {
	c.mu.Lock()
	if cur, ok := c.slots[key]; ok && cur == s {
		delete(c.slots, key)
	}
	c.mu.Unlock()
}

// Deliver is called by the transport source for every inbound application
// message. It extracts the correlation key; if a slot is outstanding for
// that key, it completes the slot (removing it atomically) and reports
// true. If no key is present or no slot is outstanding, the message is
// dropped and Deliver reports false — another observer may still handle it.
func (c *Correlator) Deliver(msg *message.Message) bool {
	key, ok := c.extractKey(msg)
	if !ok {
		return false
	}

	c.mu.Lock()
	s, exists := c.slots[key]
	if exists {
		delete(c.slots, key)
	}
	c.mu.Unlock()

	if !exists {
		c.logger.Debug("correlator dropped message with no outstanding slot", slog.String("key", key))
		return false
	}
	return s.complete(msg, nil)
}

// Outstanding returns the number of slots currently awaiting a response.
// Useful for introspection and tests.
func (c *Correlator) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}
