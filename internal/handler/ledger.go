package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/ledger"
)

// LedgerHandler handles HTTP requests against the reconciliation ledger.
type LedgerHandler struct {
	ledger *ledger.Ledger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(l *ledger.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: l}
}

// verdictResponse is the JSON view of a single field verdict.
type verdictResponse struct {
	Field    string  `json:"field"`
	FixValue *string `json:"fix_value"`
	MqValue  *string `json:"mq_value"`
	ApiValue *string `json:"api_value"`
	Match    bool    `json:"match"`
}

// reconciliationResponse is the JSON view of a reconciliation result.
type reconciliationResponse struct {
	CorrelationKey string            `json:"correlation_key"`
	Passed         bool              `json:"passed"`
	Verdicts       []verdictResponse `json:"verdicts"`
	Report         string            `json:"report"`
}

func buildReconciliationResponse(result *domain.ReconciliationResult) reconciliationResponse {
	verdicts := make([]verdictResponse, len(result.Verdicts))
	for i, v := range result.Verdicts {
		verdicts[i] = verdictResponse{
			Field:    v.FieldName,
			FixValue: v.FixValue,
			MqValue:  v.MqValue,
			ApiValue: v.ApiValue,
			Match:    v.Match,
		}
	}
	return reconciliationResponse{
		CorrelationKey: result.CorrelationKey,
		Passed:         result.Passed,
		Verdicts:       verdicts,
		Report:         result.DetailedReport(),
	}
}

// Reconcile handles GET /ledger/{key}.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "key must not be empty")
		return
	}
	result := h.ledger.Reconcile(key)
	WriteJSON(w, http.StatusOK, buildReconciliationResponse(result))
}

// ReconcileAll handles GET /ledger.
func (h *LedgerHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	results := h.ledger.ReconcileAll()
	out := make([]reconciliationResponse, len(results))
	for i, result := range results {
		out[i] = buildReconciliationResponse(result)
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"results": out,
		"total":   len(out),
	})
}
