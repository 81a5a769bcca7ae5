package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is a per-source normalised view of a fill, as observed on
// one of the three reconciliation channels (spec.md §3).
type TradeRecord struct {
	Source         Source
	RequestKey     string
	OrderID        string
	Symbol         string
	Quantity       decimal.Decimal
	Price          decimal.Decimal
	Amount         decimal.Decimal
	Currency       string
	SettlementDate *time.Time
	ExecutionTime  time.Time
	Account        string
	ExecType       string
	Fields         map[string]string
}

// CorrelationKey returns RequestKey if present, otherwise OrderID — the
// key the ledger groups records under (spec.md §3, §4.6).
func (t *TradeRecord) CorrelationKey() string {
	if t.RequestKey != "" {
		return t.RequestKey
	}
	return t.OrderID
}

// WithField sets an auxiliary string field and returns the record for
// fluent chaining, the same builder shape as the rest of this package.
func (t *TradeRecord) WithField(key, value string) *TradeRecord {
	if t.Fields == nil {
		t.Fields = make(map[string]string)
	}
	t.Fields[key] = value
	return t
}

func (t *TradeRecord) Field(key string) (string, bool) {
	if t.Fields == nil {
		return "", false
	}
	v, ok := t.Fields[key]
	return v, ok
}
