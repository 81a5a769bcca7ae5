package handler

import (
	"net/http"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/scenario"
)

// ScenarioHandler exposes the scenario agent's free-form-text-to-OrderRequest
// translation (spec.md §4.7) over HTTP, so a manual or scripted test run can
// drive it the same way internal/scenario's own tests do.
type ScenarioHandler struct {
	agent *scenario.Agent
}

// NewScenarioHandler creates a ScenarioHandler wrapping agent.
func NewScenarioHandler(agent *scenario.Agent) *ScenarioHandler {
	return &ScenarioHandler{agent: agent}
}

type translateRequest struct {
	Text string `json:"text"`
}

type orderRequestResponse struct {
	Symbol          string  `json:"symbol"`
	Side            string  `json:"side"`
	OrderType       string  `json:"order_type"`
	Price           *string `json:"price"`
	Quantity        int64   `json:"quantity"`
	TimeInForce     string  `json:"time_in_force"`
	Currency        string  `json:"currency"`
	ExpectedOutcome *string `json:"expected_outcome"`
}

func buildOrderRequestResponse(req *domain.OrderRequest) orderRequestResponse {
	resp := orderRequestResponse{
		Symbol:      req.Symbol(),
		Side:        string(req.Side()),
		OrderType:   string(req.Type()),
		Quantity:    req.Quantity(),
		TimeInForce: string(req.TimeInForce()),
		Currency:    req.Currency(),
	}
	if price, ok := req.Price(); ok {
		s := price.String()
		resp.Price = &s
	}
	if outcome, ok := req.ExpectedOutcome(); ok {
		s := string(outcome)
		resp.ExpectedOutcome = &s
	}
	return resp
}

// Translate handles POST /scenarios/translate: decodes {"text": "..."},
// runs it through the configured agent's LLM-then-deterministic fallback
// chain, and returns the resulting OrderRequest. A malformed body, an empty
// text, or a translated request that fails Build validation yields a 400
// validation_error; the deterministic translator substitutes defaults for
// slots it cannot read (an out-of-range quantity becomes 100) rather than
// rejecting them.
func (h *ScenarioHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var body translateRequest
	if err := ParseJSON(r, &body); err != nil {
		WriteDomainError(w, err)
		return
	}
	if body.Text == "" {
		WriteDomainError(w, &domain.ValidationError{Message: "text must not be empty"})
		return
	}

	req, err := h.agent.Translate(r.Context(), body.Text)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderRequestResponse(req))
}
