package transport

import (
	"context"
	"fmt"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/message"
)

// LoopbackSink is a buffered-channel Sink standing in for a FIX session:
// the interceptor writes to it, and a paired LoopbackSource reads it back
// out to drive the correlator's deliver callback, without any real network
// transport.
type LoopbackSink struct {
	out chan<- *message.Message
}

// NewLoopback creates a connected sink/source pair sharing a buffered
// channel of the given capacity.
func NewLoopback(bufferSize int) (*LoopbackSink, *LoopbackSource) {
	ch := make(chan *message.Message, bufferSize)
	return &LoopbackSink{out: ch}, &LoopbackSource{in: ch}
}

// Send enqueues msg for delivery. It fails with ErrNoSession if no session
// is bound (RemoteID is empty), and with ErrTransportFailure if the buffer
// is full and ctx is cancelled before room frees up.
func (s *LoopbackSink) Send(ctx context.Context, msg *message.Message, session Session) error {
	if session.RemoteID == "" {
		return fmt.Errorf("%w: no remote session bound", domain.ErrNoSession)
	}
	select {
	case s.out <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrTransportFailure, ctx.Err())
	}
}

// LoopbackSource reads messages fed by a paired LoopbackSink and delivers
// them to a callback until its Start context is cancelled.
type LoopbackSource struct {
	in <-chan *message.Message
}

// Start launches a goroutine that calls deliver for every message read
// from the channel, until ctx is cancelled.
func (s *LoopbackSource) Start(ctx context.Context, deliver func(*message.Message)) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-s.in:
				if !ok {
					return
				}
				deliver(msg)
			}
		}
	}()
}
