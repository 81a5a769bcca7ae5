// Package transport declares the abstract collaborators the engine talks
// to — a FIX-like session sink/source, a message bus, a REST client and
// authenticator, and an optional LLM provider — plus one concrete,
// in-process implementation of each except Authenticator, which is only
// declared, so the engine is exercisable end to end without a real venue,
// broker, or HTTP service (spec.md §6).
package transport

import (
	"context"
	"time"

	"github.com/vinipx/quantaf/internal/message"
)

// Session identifies the (local, remote) CompID pair a message is sent on.
type Session struct {
	LocalID  string
	RemoteID string
}

// Sink is the interceptor-side transport collaborator: it delivers a
// synthesized venue response back out over a session.
type Sink interface {
	Send(ctx context.Context, msg *message.Message, session Session) error
}

// Source is the correlator-side transport collaborator: something that
// calls a deliver function for every inbound application message. A real
// implementation would be a FIX session's application callback; the
// loopback implementation here is a goroutine reading a channel.
type Source interface {
	// Start begins delivering inbound messages to deliver until ctx is
	// cancelled.
	Start(ctx context.Context, deliver func(*message.Message))
}

// Bus is a minimal publish/listen message bus abstraction standing in for
// a JMS/AMQP broker, used by tests to populate the ledger's MQ source.
type Bus interface {
	Publish(destination string, payload *message.Message) error
	Listen(ctx context.Context, destination string, timeout time.Duration) (*message.Message, error)
	ListenWithFilter(ctx context.Context, destination string, filter func(*message.Message) bool, timeout time.Duration) (*message.Message, error)
}

// RESTClient is a minimal path-based HTTP client abstraction standing in
// for the query-API source of the ledger.
type RESTClient interface {
	Get(ctx context.Context, path string) (status int, body []byte, err error)
	Post(ctx context.Context, path string, body []byte) (status int, respBody []byte, err error)
	Put(ctx context.Context, path string, body []byte) (status int, respBody []byte, err error)
	Delete(ctx context.Context, path string) (status int, body []byte, err error)
}

// Authenticator produces bearer tokens for RESTClient calls.
type Authenticator interface {
	Token(ctx context.Context) (token string, expiry time.Time, err error)
}

// LLMProvider is an optional natural-language completion collaborator for
// the scenario agent. Absence is normal — see transport.NoLLMProvider.
type LLMProvider interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
	IsAvailable() bool
}
