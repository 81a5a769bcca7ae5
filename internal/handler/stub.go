package handler

import (
	"net/http"

	"github.com/vinipx/quantaf/internal/stub"
)

// StubHandler handles HTTP requests against the stub registry.
type StubHandler struct {
	registry *stub.Registry
}

// NewStubHandler creates a new StubHandler.
func NewStubHandler(registry *stub.Registry) *StubHandler {
	return &StubHandler{registry: registry}
}

// ruleResponse is the JSON view of a single registered stub rule.
type ruleResponse struct {
	Label     string `json:"label"`
	CallCount int64  `json:"call_count"`
	DelayMs   int64  `json:"delay_ms"`
}

// stubListResponse is the JSON response for GET /stubs.
type stubListResponse struct {
	Rules []ruleResponse `json:"rules"`
	Total int            `json:"total"`
}

// List handles GET /stubs.
func (h *StubHandler) List(w http.ResponseWriter, r *http.Request) {
	mappings := h.registry.Mappings()
	rules := make([]ruleResponse, len(mappings))
	for i, rule := range mappings {
		rules[i] = ruleResponse{
			Label:     rule.Label(),
			CallCount: rule.CallCount(),
			DelayMs:   rule.Delay().Milliseconds(),
		}
	}
	WriteJSON(w, http.StatusOK, stubListResponse{Rules: rules, Total: len(rules)})
}

// Reset handles POST /stubs/reset.
func (h *StubHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.registry.Reset()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
