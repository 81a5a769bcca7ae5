package generator

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/vinipx/quantaf/internal/calendar"
)

// Property: Price always returns a strictly non-negative value, for any mu
// and any non-negative sigma.
func TestProperty_PriceIsAlwaysNonNegative(t *testing.T) {
	g := New(calendar.NYSE())
	rapid.Check(t, func(t *rapid.T) {
		mu := rapid.Float64Range(-1_000_000, 1_000_000).Draw(t, "mu")
		sigma := rapid.Float64Range(0, 10_000).Draw(t, "sigma")

		p, err := g.Price(mu, sigma)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Sign() < 0 {
			t.Fatalf("Price(%v, %v) = %v, want non-negative", mu, sigma, p)
		}
	})
}

// Property: Volume is always at least 1, for any positive lambda.
func TestProperty_VolumeIsAlwaysAtLeastOne(t *testing.T) {
	g := New(calendar.NYSE())
	rapid.Check(t, func(t *rapid.T) {
		lambda := rapid.Float64Range(0.0001, 500).Draw(t, "lambda")

		v, err := g.Volume(lambda)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v < 1 {
			t.Fatalf("Volume(%v) = %d, want >= 1", lambda, v)
		}
	})
}

// Property: CorrelatedPrices always returns exactly n non-negative prices
// for any valid rho in [-1, 1] and positive n.
func TestProperty_CorrelatedPricesLengthAndSign(t *testing.T) {
	g := New(calendar.NYSE())
	rapid.Check(t, func(t *rapid.T) {
		mu := rapid.Float64Range(-1000, 1000).Draw(t, "mu")
		sigma := rapid.Float64Range(0, 100).Draw(t, "sigma")
		rho := rapid.Float64Range(-1, 1).Draw(t, "rho")
		n := rapid.IntRange(1, 200).Draw(t, "n")

		prices, err := g.CorrelatedPrices(mu, sigma, rho, n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(prices) != n {
			t.Fatalf("len(prices) = %d, want %d", len(prices), n)
		}
		for i, p := range prices {
			if p.Sign() < 0 {
				t.Fatalf("prices[%d] = %v, want non-negative", i, p)
			}
		}
	})
}

// Property: NewRequestKey never repeats across a burst of calls from a
// single goroutine, regardless of prefix.
func TestProperty_RequestKeysNeverCollideWithinABurst(t *testing.T) {
	g := New(calendar.NYSE())
	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.StringMatching(`[A-Z]{2,6}`).Draw(t, "prefix")
		count := rapid.IntRange(2, 50).Draw(t, "count")

		seen := make(map[string]bool, count)
		for i := 0; i < count; i++ {
			k := g.NewRequestKey(prefix)
			if seen[k] {
				t.Fatalf("NewRequestKey produced a duplicate key %q after %d calls", k, i)
			}
			seen[k] = true
		}
	})
}
