package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vinipx/quantaf/internal/domain"
)

// Assertion is the fluent, chainable assertion surface over a single
// correlation key's reconciliation (spec.md §4.6). Each method is a no-op
// once a prior assertion in the chain has already failed, so a test author
// can write Assert(ledger, key).AssertParity().AssertSettlementDateMatch()
// and inspect a single Err() at the end.
type Assertion struct {
	ledger *Ledger
	key    string
	err    error
}

// Assert starts a fluent assertion chain over ledger scoped to key.
func Assert(ledger *Ledger, key string) *Assertion {
	return &Assertion{ledger: ledger, key: key}
}

// Err returns the first assertion failure recorded in the chain, or nil if
// every assertion so far has passed.
func (a *Assertion) Err() error {
	return a.err
}

// AssertParity requires every verdict for the key to match. The failure
// message lists every mismatch found.
func (a *Assertion) AssertParity() *Assertion {
	if a.err != nil {
		return a
	}
	result := a.ledger.Reconcile(a.key)
	if result.Passed {
		return a
	}
	a.err = &domain.AssertionFailure{
		Key:     a.key,
		Field:   "*",
		Message: fmt.Sprintf("reconciliation for key %q failed parity: %s", a.key, formatMismatches(result.Mismatches())),
	}
	return a
}

// AssertAmountMatch re-checks the "price" and "amount" verdicts against a
// caller-supplied tolerance instead of the ledger's configured default.
// As with Reconcile, a side absent from a source contributes no mismatch —
// only present pairs must agree within tolerance (spec.md §9, documented
// divergence from the stricter original).
func (a *Assertion) AssertAmountMatch(tolerance decimal.Decimal) *Assertion {
	if a.err != nil {
		return a
	}
	fix, mq, api := a.ledger.recordsFor(a.key)

	fields := []struct {
		name    string
		extract func(*domain.TradeRecord) (decimal.Decimal, bool)
	}{
		{"price", amountPrice},
		{"amount", amountAmount},
	}
	for _, f := range fields {
		v := decimalOf(fix, mq, api, f.extract)
		round := func(p *decimal.Decimal) *decimal.Decimal {
			if p == nil {
				return nil
			}
			r := roundSignificant(*p, a.ledger.precision)
			return &r
		}
		rf, rm, ra := round(v.fix), round(v.mq), round(v.api)
		match := decimalsApproxEqual(rf, rm, tolerance) &&
			decimalsApproxEqual(rf, ra, tolerance) &&
			decimalsApproxEqual(rm, ra, tolerance)
		if !match {
			a.err = &domain.AssertionFailure{
				Key:      a.key,
				Field:    f.name,
				FixValue: stringOrNA(decimalString(rf)),
				MqValue:  stringOrNA(decimalString(rm)),
				ApiValue: stringOrNA(decimalString(ra)),
				Message: fmt.Sprintf(
					"reconciliation for key %q field %q exceeded tolerance %s: fix=%s mq=%s api=%s",
					a.key, f.name, tolerance.String(),
					stringOrNA(decimalString(rf)), stringOrNA(decimalString(rm)), stringOrNA(decimalString(ra)),
				),
			}
			return a
		}
	}
	return a
}

// AssertSettlementDateMatch requires the "settlementDate" verdict to
// match.
func (a *Assertion) AssertSettlementDateMatch() *Assertion {
	return a.AssertFieldMatch("settlementDate")
}

// AssertFieldMatch requires the verdict named name to match.
func (a *Assertion) AssertFieldMatch(name string) *Assertion {
	if a.err != nil {
		return a
	}
	result := a.ledger.Reconcile(a.key)
	verdict, found := result.Verdict(name)
	if !found {
		a.err = &domain.AssertionFailure{
			Key:     a.key,
			Field:   name,
			Message: fmt.Sprintf("reconciliation for key %q has no verdict named %q", a.key, name),
		}
		return a
	}
	if verdict.Match {
		return a
	}
	a.err = &domain.AssertionFailure{
		Key:      a.key,
		Field:    name,
		FixValue: stringOrNA(verdict.FixValue),
		MqValue:  stringOrNA(verdict.MqValue),
		ApiValue: stringOrNA(verdict.ApiValue),
		Message: fmt.Sprintf(
			"reconciliation for key %q field %q mismatched: fix=%s mq=%s api=%s",
			a.key, name, stringOrNA(verdict.FixValue), stringOrNA(verdict.MqValue), stringOrNA(verdict.ApiValue),
		),
	}
	return a
}

func stringOrNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}

func formatMismatches(mismatches []domain.FieldVerdict) string {
	if len(mismatches) == 0 {
		return "(none)"
	}
	out := ""
	for i, v := range mismatches {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s(fix=%s, mq=%s, api=%s)", v.FieldName, stringOrNA(v.FixValue), stringOrNA(v.MqValue), stringOrNA(v.ApiValue))
	}
	return out
}
