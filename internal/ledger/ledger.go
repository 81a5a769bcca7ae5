// Package ledger implements the three-way reconciliation engine: records
// observed on the FIX, MQ, and API channels are compared field by field
// under numeric tolerance, exact-date, and exact-string rules (spec.md
// §4.6).
package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vinipx/quantaf/internal/domain"
)

// DefaultPrecision and DefaultTolerance match spec.md §4.6's defaults.
const (
	DefaultPrecision = 8
	DefaultTolerance = "0.0001"
)

// sourceStore is a per-source record map that also tracks insertion order,
// the same "LinkedHashMap emulation" shape as the teacher's
// OrderStore.brokerOrders (map plus an append-only order slice).
type sourceStore struct {
	records map[string]*domain.TradeRecord
	order   []string
}

func newSourceStore() *sourceStore {
	return &sourceStore{records: make(map[string]*domain.TradeRecord)}
}

func (s *sourceStore) put(key string, rec *domain.TradeRecord) {
	if _, exists := s.records[key]; !exists {
		s.order = append(s.order, key)
	}
	s.records[key] = rec
}

func (s *sourceStore) get(key string) (*domain.TradeRecord, bool) {
	r, ok := s.records[key]
	return r, ok
}

func (s *sourceStore) clear() {
	s.records = make(map[string]*domain.TradeRecord)
	s.order = nil
}

// Ledger holds the three per-source record stores and the configured
// tolerance used to compare numeric fields.
type Ledger struct {
	mu        sync.RWMutex
	fix       *sourceStore
	mq        *sourceStore
	api       *sourceStore
	precision int32
	tolerance decimal.Decimal
	logger    *slog.Logger
}

// Option configures a Ledger at construction time.
type Option func(*Ledger)

// WithPrecision overrides the default significant-figure rounding applied
// before numeric comparison.
func WithPrecision(sigFigs int32) Option {
	return func(l *Ledger) { l.precision = sigFigs }
}

// WithTolerance overrides the default absolute numeric tolerance.
func WithTolerance(tolerance decimal.Decimal) Option {
	return func(l *Ledger) { l.tolerance = tolerance }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates an empty Ledger with spec.md's default precision (8
// significant figures) and tolerance (1e-4).
func New(opts ...Option) *Ledger {
	tolerance, _ := decimal.NewFromString(DefaultTolerance)
	l := &Ledger{
		fix:       newSourceStore(),
		mq:        newSourceStore(),
		api:       newSourceStore(),
		precision: DefaultPrecision,
		tolerance: tolerance,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddRecord inserts rec into the store for its source, keyed by its
// correlation key. A repeat key overwrites the prior record. Records with
// no correlation key are rejected.
func (l *Ledger) AddRecord(rec *domain.TradeRecord) error {
	key := rec.CorrelationKey()
	if key == "" {
		return domain.ErrMissingCorrelationKey
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch rec.Source {
	case domain.SourceFIX:
		l.fix.put(key, rec)
	case domain.SourceMQ:
		l.mq.put(key, rec)
	case domain.SourceAPI:
		l.api.put(key, rec)
	default:
		return fmt.Errorf("%w: unrecognized source %v", domain.ErrInvalidParameter, rec.Source)
	}
	l.logger.Debug("added trade record", slog.String("source", rec.Source.String()), slog.String("key", key))
	return nil
}

// Reconcile builds a ReconciliationResult comparing the (at most) three
// records stored under key, across price, quantity, amount, settlementDate,
// symbol, currency, and account, in that exact order.
func (l *Ledger) Reconcile(key string) *domain.ReconciliationResult {
	fix, mq, api := l.recordsFor(key)

	result := domain.NewReconciliationResult(key)

	result.AddVerdict(l.compareAmounts("price", decimalOf(fix, mq, api, amountPrice)))
	result.AddVerdict(l.compareAmounts("quantity", decimalOf(fix, mq, api, amountQuantity)))
	result.AddVerdict(l.compareAmounts("amount", decimalOf(fix, mq, api, amountAmount)))
	result.AddVerdict(l.compareDates("settlementDate", dateOf(fix), dateOf(mq), dateOf(api)))
	result.AddVerdict(l.compareStrings("symbol", stringOf(fix, func(r *domain.TradeRecord) string { return r.Symbol }), stringOf(mq, func(r *domain.TradeRecord) string { return r.Symbol }), stringOf(api, func(r *domain.TradeRecord) string { return r.Symbol })))
	result.AddVerdict(l.compareStrings("currency", stringOf(fix, func(r *domain.TradeRecord) string { return r.Currency }), stringOf(mq, func(r *domain.TradeRecord) string { return r.Currency }), stringOf(api, func(r *domain.TradeRecord) string { return r.Currency })))
	result.AddVerdict(l.compareStrings("account", stringOf(fix, func(r *domain.TradeRecord) string { return r.Account }), stringOf(mq, func(r *domain.TradeRecord) string { return r.Account }), stringOf(api, func(r *domain.TradeRecord) string { return r.Account })))

	l.logger.Info("reconciled", slog.String("key", key), slog.Bool("passed", result.Passed))
	return result
}

// ReconcileAll enumerates the union of keys across the three stores,
// preserving insertion order across sources, and reconciles each.
func (l *Ledger) ReconcileAll() []*domain.ReconciliationResult {
	l.mu.RLock()
	keys := l.unionKeysLocked()
	l.mu.RUnlock()

	results := make([]*domain.ReconciliationResult, 0, len(keys))
	for _, key := range keys {
		results = append(results, l.Reconcile(key))
	}
	return results
}

func (l *Ledger) unionKeysLocked() []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, store := range []*sourceStore{l.fix, l.mq, l.api} {
		for _, k := range store.order {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// VerifyRejectionHandled reports whether the FIX-source store contains any
// record for symbol with ExecType "8" (rejected).
func (l *Ledger) VerifyRejectionHandled(symbol string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, key := range l.fix.order {
		rec := l.fix.records[key]
		if rec.Symbol == symbol && rec.ExecType == "8" {
			return true
		}
	}
	return false
}

// Clear empties all three source stores.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.fix.clear()
	l.mq.clear()
	l.api.clear()
	l.mu.Unlock()
	l.logger.Info("ledger cleared")
}

// recordsFor takes a consistent snapshot of the (at most) three records
// stored under key, one per source. Used by both Reconcile and the
// assertion surface, which re-runs the same comparisons against a
// caller-supplied tolerance.
func (l *Ledger) recordsFor(key string) (fix, mq, api *domain.TradeRecord) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fix, _ = l.fix.get(key)
	mq, _ = l.mq.get(key)
	api, _ = l.api.get(key)
	return fix, mq, api
}
