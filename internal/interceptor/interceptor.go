// Package interceptor consumes inbound venue-side messages, finds the
// first matching stub rule, applies its delay, synthesises a response, and
// hands it to a transport sink — the venue half of the harness (spec.md
// §4.4).
package interceptor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/message"
	"github.com/vinipx/quantaf/internal/stub"
	"github.com/vinipx/quantaf/internal/transport"
)

// DefaultCorrelationTags lists the body tags copied verbatim from request
// to response during header/correlation propagation when no
// WithCorrelationTags option is given: just the client-assigned order-id
// tag. WithCorrelationTags replaces this list rather than extending it.
var DefaultCorrelationTags = []message.Tag{message.TagClOrdID}

// Interceptor wires a stub registry to a transport sink.
type Interceptor struct {
	registry        *stub.Registry
	sink            transport.Sink
	correlationTags []message.Tag
	logger          *slog.Logger
}

// Option configures an Interceptor at construction time.
type Option func(*Interceptor)

// WithCorrelationTags overrides the default correlation-tag propagation
// list.
func WithCorrelationTags(tags []message.Tag) Option {
	return func(i *Interceptor) { i.correlationTags = tags }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interceptor) { i.logger = logger }
}

// New creates an Interceptor over registry, writing responses to sink.
func New(registry *stub.Registry, sink transport.Sink, opts ...Option) *Interceptor {
	i := &Interceptor{
		registry:        registry,
		sink:            sink,
		correlationTags: DefaultCorrelationTags,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Handle processes a single inbound message m on the session identified by
// (localID, remoteID). It returns (true, nil) if a rule matched and its
// response was handed to the sink, (false, nil) if no rule matched, and
// (false, err) if delay was interrupted by ctx or the sink reported a
// transport failure — neither of which is fatal to the caller's loop.
func (i *Interceptor) Handle(ctx context.Context, m *message.Message, localID, remoteID string) (bool, error) {
	rule := i.registry.FindMatch(m)
	if rule == nil {
		return false, nil
	}

	if delay := rule.Delay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			i.logger.Info("interceptor delay interrupted by shutdown", slog.String("label", rule.Label()))
			return false, ctx.Err()
		}
	}

	response := rule.GenerateResponse(m)
	if response == nil {
		i.logger.Warn("stub rule produced a nil response", slog.String("label", rule.Label()))
		return false, nil
	}

	i.normalizeHeaders(response, localID, remoteID)
	i.propagateCorrelation(m, response)

	if err := i.sink.Send(ctx, response, transport.Session{LocalID: localID, RemoteID: remoteID}); err != nil {
		wrapped := fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
		i.logger.Error("interceptor failed to send response", slog.String("label", rule.Label()), slog.String("error", wrapped.Error()))
		return false, wrapped
	}
	return true, nil
}

// normalizeHeaders sets the response's sender/target to the request's
// target/sender, swapped, so the response routes back to the original
// sender.
func (i *Interceptor) normalizeHeaders(response *message.Message, localID, remoteID string) {
	response.SetHeaderString(message.TagSenderCompID, localID)
	response.SetHeaderString(message.TagTargetCompID, remoteID)
}

// propagateCorrelation copies every configured correlation tag that request
// carries as a string field onto response. A tag set on request with
// another value kind (decimal, int, char, time) is not copied.
func (i *Interceptor) propagateCorrelation(request, response *message.Message) {
	for _, tag := range i.correlationTags {
		if !request.IsSet(tag) {
			continue
		}
		if v, err := request.GetString(tag); err == nil {
			response.SetString(tag, v)
		}
	}
}
