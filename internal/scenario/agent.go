package scenario

import (
	"context"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/transport"
)

// defaultSystemPrompt instructs an LLM backend to restate free-form intent
// as a sentence the deterministic translator's keyword rules can parse,
// keeping the fallback path exercisable even when the LLM path is taken.
const defaultSystemPrompt = "Restate the trader's instruction as a single sentence naming side, order type, symbol, quantity, price, and time-in-force using plain English trading terms."

// Agent wraps the deterministic Translator with an optional LLM backend.
// Fallback policy, named by the Java original's FixScenarioAgent and
// preserved here (spec.md §4.7, "a pluggable LLM backend may be present;
// ... the caller decides whether to prefer LLM output"): if an LLM
// provider is configured, available, and preferred, try it first; on
// unavailability, failure, or an LLM completion the deterministic parser
// can't make sense of, fall back to translating the original text
// directly. With no provider configured, the deterministic path runs
// unconditionally — template-only mode needs no provider at all.
type Agent struct {
	translator   *Translator
	llm          transport.LLMProvider
	preferLLM    bool
	systemPrompt string
}

// NewAgent creates an Agent. llm may be nil, in which case Translate always
// uses the deterministic path.
func NewAgent(llm transport.LLMProvider, preferLLM bool) *Agent {
	return &Agent{
		translator:   New(),
		llm:          llm,
		preferLLM:    preferLLM,
		systemPrompt: defaultSystemPrompt,
	}
}

// Translate resolves text to an OrderRequest via the configured fallback
// chain.
func (a *Agent) Translate(ctx context.Context, text string) (*domain.OrderRequest, error) {
	if a.llm != nil && a.preferLLM && a.llm.IsAvailable() {
		if completion, err := a.llm.Complete(ctx, a.systemPrompt, text); err == nil {
			if req, perr := a.translator.Translate(completion); perr == nil {
				return req, nil
			}
		}
	}
	return a.translator.Translate(text)
}
