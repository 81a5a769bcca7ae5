package transport

import (
	"context"
	"fmt"
	"sync"
)

// Handler answers a single REST call with a status code and response body.
type Handler func(ctx context.Context, body []byte) (status int, respBody []byte, err error)

// LoopbackRESTClient is an in-memory path → handler map standing in for
// the query-API source's HTTP client, so ledger API-source fixtures can be
// built without a real HTTP service.
type LoopbackRESTClient struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewLoopbackRESTClient creates a client with no registered routes.
func NewLoopbackRESTClient() *LoopbackRESTClient {
	return &LoopbackRESTClient{handlers: make(map[string]Handler)}
}

// Handle registers handler for the given method+path key (e.g. "GET /trades/K").
func (c *LoopbackRESTClient) Handle(method, path string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[method+" "+path] = handler
}

func (c *LoopbackRESTClient) dispatch(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	c.mu.RLock()
	handler, ok := c.handlers[method+" "+path]
	c.mu.RUnlock()
	if !ok {
		return 404, nil, fmt.Errorf("no handler registered for %s %s", method, path)
	}
	return handler(ctx, body)
}

func (c *LoopbackRESTClient) Get(ctx context.Context, path string) (int, []byte, error) {
	return c.dispatch(ctx, "GET", path, nil)
}

func (c *LoopbackRESTClient) Post(ctx context.Context, path string, body []byte) (int, []byte, error) {
	return c.dispatch(ctx, "POST", path, body)
}

func (c *LoopbackRESTClient) Put(ctx context.Context, path string, body []byte) (int, []byte, error) {
	return c.dispatch(ctx, "PUT", path, body)
}

func (c *LoopbackRESTClient) Delete(ctx context.Context, path string) (int, []byte, error) {
	return c.dispatch(ctx, "DELETE", path, nil)
}
