package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/message"
)

// InMemoryBus is a channel-backed Bus implementation used by tests to
// populate the ledger's MQ source without a real broker.
type InMemoryBus struct {
	mu            sync.Mutex
	subscriptions map[string][]chan *message.Message
}

// NewInMemoryBus creates an empty bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{subscriptions: make(map[string][]chan *message.Message)}
}

// Publish fans payload out to every listener currently waiting on
// destination. Listeners that start after Publish returns do not see it —
// this is a simple fan-out, not a durable queue.
func (b *InMemoryBus) Publish(destination string, payload *message.Message) error {
	b.mu.Lock()
	subs := append([]chan *message.Message(nil), b.subscriptions[destination]...)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Listen blocks until a message arrives on destination or timeout elapses.
func (b *InMemoryBus) Listen(ctx context.Context, destination string, timeout time.Duration) (*message.Message, error) {
	return b.ListenWithFilter(ctx, destination, func(*message.Message) bool { return true }, timeout)
}

// ListenWithFilter blocks until a message matching filter arrives on
// destination or timeout elapses.
func (b *InMemoryBus) ListenWithFilter(ctx context.Context, destination string, filter func(*message.Message) bool, timeout time.Duration) (*message.Message, error) {
	ch := make(chan *message.Message, 8)
	b.mu.Lock()
	b.subscriptions[destination] = append(b.subscriptions[destination], ch)
	b.mu.Unlock()

	defer b.unsubscribe(destination, ch)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case msg := <-ch:
			if filter(msg) {
				return msg, nil
			}
		case <-deadline.C:
			return nil, fmt.Errorf("%w: no message on %q matching filter within %s", domain.ErrTimeout, destination, timeout)
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, ctx.Err())
		}
	}
}

func (b *InMemoryBus) unsubscribe(destination string, target chan *message.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscriptions[destination]
	for i, ch := range subs {
		if ch == target {
			b.subscriptions[destination] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
