// Package handler exposes the harness's introspection HTTP API: health,
// stub-registry inspection/reset, and ledger reconciliation lookups
// (SPEC_FULL.md §5). It is the control surface an operator or a test run
// uses to drive and observe the engine, not a venue API.
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vinipx/quantaf/internal/correlator"
	"github.com/vinipx/quantaf/internal/ledger"
	"github.com/vinipx/quantaf/internal/scenario"
	"github.com/vinipx/quantaf/internal/stub"
)

// NewRouter creates a chi router with all introspection routes registered,
// request logging, and Content-Type validation middleware, in the same
// shape the teacher's handler.NewRouter uses.
func NewRouter(registry *stub.Registry, led *ledger.Ledger, corr *correlator.Correlator, agent *scenario.Agent, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	stubH := NewStubHandler(registry)
	ledgerH := NewLedgerHandler(led)
	scenarioH := NewScenarioHandler(agent)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"outstanding": corr.Outstanding(),
		})
	})

	r.Get("/stubs", stubH.List)
	r.Post("/stubs/reset", stubH.Reset)

	r.Get("/ledger", ledgerH.ReconcileAll)
	r.Get("/ledger/{key}", ledgerH.Reconcile)

	r.Post("/scenarios/translate", scenarioH.Translate)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
