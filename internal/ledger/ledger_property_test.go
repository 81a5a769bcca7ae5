package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/vinipx/quantaf/internal/domain"
)

// Property (spec.md §8, invariant 3): for any tolerance and any two
// values, the comparison returns equal iff the rounded values differ by
// no more than tolerance.
func TestProperty_ToleranceComparisonMatchesDefinition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(-1_000_000, 1_000_000).Draw(t, "a")
		b := rapid.Float64Range(-1_000_000, 1_000_000).Draw(t, "b")
		tol := rapid.Float64Range(0, 10).Draw(t, "tolerance")

		da := decimal.NewFromFloat(a)
		db := decimal.NewFromFloat(b)
		tolerance := decimal.NewFromFloat(tol)

		l := New(WithTolerance(tolerance))
		got := l.compareAmounts("price", amountValues{fix: &da, mq: &db}).Match
		want := roundSignificant(da, DefaultPrecision).Sub(roundSignificant(db, DefaultPrecision)).Abs().LessThanOrEqual(tolerance)
		if got != want {
			t.Fatalf("compareAmounts(%v, %v, tol=%v).Match = %v, want %v", da, db, tolerance, got, want)
		}
	})
}

// Property: an absent side (nil) never causes a tolerance mismatch,
// regardless of the present side's value or the configured tolerance
// (spec.md §9, documented absent-vs-present asymmetry).
func TestProperty_AbsentSideIsAlwaysApproxEqual(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(-1_000_000, 1_000_000).Draw(t, "v")
		tol := rapid.Float64Range(0, 10).Draw(t, "tolerance")
		dv := decimal.NewFromFloat(v)
		tolerance := decimal.NewFromFloat(tol)

		if !decimalsApproxEqual(nil, &dv, tolerance) {
			t.Fatal("expected nil lhs to be approx-equal to any present value")
		}
		if !decimalsApproxEqual(&dv, nil, tolerance) {
			t.Fatal("expected nil rhs to be approx-equal to any present value")
		}
		if !decimalsApproxEqual(nil, nil, tolerance) {
			t.Fatal("expected two nils to be approx-equal")
		}
	})
}

// Property (spec.md §8, invariant 2): a ReconciliationResult's Passed flag
// always equals the conjunction of its verdicts' Match flags, regardless
// of which fields were inserted for which sources.
func TestProperty_PassedIffAllVerdictsMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := New()
		key := "K"

		haveFix := rapid.Bool().Draw(t, "haveFix")
		haveMQ := rapid.Bool().Draw(t, "haveMQ")
		haveAPI := rapid.Bool().Draw(t, "haveAPI")

		price := rapid.Float64Range(1, 10000).Draw(t, "price")
		drift := rapid.Float64Range(0, 20).Draw(t, "drift")

		mk := func(src domain.Source, p float64) *domain.TradeRecord {
			return &domain.TradeRecord{
				Source:     src,
				RequestKey: key,
				Symbol:     "SYM",
				Price:      decimal.NewFromFloat(p),
				Quantity:   decimal.NewFromInt(100),
				Amount:     decimal.NewFromFloat(p * 100),
				Currency:   "USD",
				Account:    "ACC",
			}
		}

		if haveFix {
			_ = l.AddRecord(mk(domain.SourceFIX, price))
		}
		if haveMQ {
			_ = l.AddRecord(mk(domain.SourceMQ, price+drift))
		}
		if haveAPI {
			_ = l.AddRecord(mk(domain.SourceAPI, price))
		}

		result := l.Reconcile(key)
		want := true
		for _, v := range result.Verdicts {
			if !v.Match {
				want = false
				break
			}
		}
		if result.Passed != want {
			t.Fatalf("Passed = %v, want %v (verdicts: %+v)", result.Passed, want, result.Verdicts)
		}
	})
}
