package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vinipx/quantaf/internal/correlator"
	"github.com/vinipx/quantaf/internal/domain"
	"github.com/vinipx/quantaf/internal/ledger"
	"github.com/vinipx/quantaf/internal/message"
	"github.com/vinipx/quantaf/internal/scenario"
	"github.com/vinipx/quantaf/internal/stub"
	"github.com/vinipx/quantaf/internal/transport"
)

// testEnv bundles all dependencies for handler integration tests.
type testEnv struct {
	router   http.Handler
	registry *stub.Registry
	ledger   *ledger.Ledger
	corr     *correlator.Correlator
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := stub.New(logger)
	led := ledger.New(ledger.WithLogger(logger))

	sink, _ := transport.NewLoopback(8)
	corr := correlator.New(func(m *message.Message) (string, bool) {
		v, err := m.GetString(message.TagClOrdID)
		return v, err == nil
	}, sink, logger)
	corr.BindSession(transport.Session{LocalID: "QUANTAF", RemoteID: "VENUE"})

	agent := scenario.NewAgent(transport.NoLLMProvider{}, false)
	router := NewRouter(registry, led, corr, agent, logger)

	return &testEnv{router: router, registry: registry, ledger: led, corr: corr}
}

func (env *testEnv) doJSON(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func (env *testEnv) doJSONBody(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "GET", "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", resp["status"])
	}
}

func TestStubs_ListEmpty(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "GET", "/stubs")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp stubListResponse
	decodeJSON(t, rr, &resp)
	if resp.Total != 0 {
		t.Fatalf("expected 0 rules, got %d", resp.Total)
	}
}

func TestStubs_ListAfterRegister(t *testing.T) {
	env := newTestEnv()
	_, err := env.registry.When(func(m *message.Message) bool { return true }).
		RespondWith(func(req *message.Message) *message.Message { return message.New() }).
		DescribedAs("catch-all").
		Register()
	if err != nil {
		t.Fatalf("register rule: %v", err)
	}

	rr := env.doJSON(t, "GET", "/stubs")
	var resp stubListResponse
	decodeJSON(t, rr, &resp)
	if resp.Total != 1 {
		t.Fatalf("expected 1 rule, got %d", resp.Total)
	}
	if resp.Rules[0].Label != "catch-all" {
		t.Fatalf("expected label catch-all, got %q", resp.Rules[0].Label)
	}
}

func TestStubs_Reset(t *testing.T) {
	env := newTestEnv()
	_, _ = env.registry.When(func(m *message.Message) bool { return true }).
		RespondWith(func(req *message.Message) *message.Message { return message.New() }).
		Register()

	rr := env.doJSON(t, "POST", "/stubs/reset")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if env.registry.Size() != 0 {
		t.Fatalf("expected registry to be empty after reset, got %d", env.registry.Size())
	}
}

func TestLedger_ReconcileUnknownKey(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, "GET", "/ledger/unknown-key")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp reconciliationResponse
	decodeJSON(t, rr, &resp)
	if !resp.Passed {
		t.Fatalf("expected an all-absent reconciliation to trivially pass, got %+v", resp)
	}
}

func TestLedger_ReconcileMismatch(t *testing.T) {
	env := newTestEnv()
	_ = env.ledger.AddRecord(&domain.TradeRecord{
		Source:     domain.SourceFIX,
		RequestKey: "REQ-1",
		Symbol:     "AAPL",
		Quantity:   decimal.NewFromInt(100),
		Price:      decimal.NewFromInt(150),
		Amount:     decimal.NewFromInt(15000),
		Currency:   "USD",
	})
	_ = env.ledger.AddRecord(&domain.TradeRecord{
		Source:     domain.SourceMQ,
		RequestKey: "REQ-1",
		Symbol:     "AAPL",
		Quantity:   decimal.NewFromInt(100),
		Price:      decimal.NewFromInt(151),
		Amount:     decimal.NewFromInt(15100),
		Currency:   "USD",
	})

	rr := env.doJSON(t, "GET", "/ledger/REQ-1")
	var resp reconciliationResponse
	decodeJSON(t, rr, &resp)
	if resp.Passed {
		t.Fatal("expected reconciliation with mismatched price to fail")
	}
	if resp.Report == "" {
		t.Fatal("expected a non-empty detailed report")
	}
}

func TestLedger_ReconcileAll(t *testing.T) {
	env := newTestEnv()
	_ = env.ledger.AddRecord(&domain.TradeRecord{
		Source: domain.SourceAPI, OrderID: "ORD-9", Symbol: "MSFT",
		Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(300), Amount: decimal.NewFromInt(3000),
	})

	rr := env.doJSON(t, "GET", "/ledger")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["total"] != 1.0 {
		t.Fatalf("expected total=1, got %v", resp["total"])
	}
}

func TestScenarios_Translate(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSONBody(t, "POST", "/scenarios/translate", `{"text":"Buy 200 shares of Apple at $150 limit"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp orderRequestResponse
	decodeJSON(t, rr, &resp)
	if resp.Symbol != "AAPL" {
		t.Fatalf("expected symbol AAPL, got %q", resp.Symbol)
	}
	if resp.Side != "BUY" {
		t.Fatalf("expected side BUY, got %q", resp.Side)
	}
	if resp.Quantity != 200 {
		t.Fatalf("expected quantity 200, got %d", resp.Quantity)
	}
}

func TestScenarios_Translate_RejectsEmptyText(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSONBody(t, "POST", "/scenarios/translate", `{"text":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}
