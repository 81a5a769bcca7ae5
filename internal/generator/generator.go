// Package generator produces synthetic market data — prices, volumes,
// correlated price series, settlement dates, timestamps, and identifiers —
// for seeding stub responses and scenario fixtures.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vinipx/quantaf/internal/calendar"
	"github.com/vinipx/quantaf/internal/domain"
)

// SettlementCycle is the T+n settlement convention to apply against a
// calendar in SettlementDate.
type SettlementCycle int

const (
	T0 SettlementCycle = 0
	T1 SettlementCycle = 1
	T2 SettlementCycle = 2
)

func (c SettlementCycle) days() int { return int(c) }

// Generator produces synthetic market data against a configured business
// calendar. All methods are safe for concurrent use: sampling goes through
// math/rand's global, mutex-protected source, and identifier minting uses
// an atomic sequence rather than shared mutable state.
type Generator struct {
	cal *calendar.Calendar
	seq atomic.Int64
}

// New creates a Generator whose settlement-date arithmetic uses cal.
func New(cal *calendar.Calendar) *Generator {
	return &Generator{cal: cal}
}

// Price samples |N(mu, sigma)|, rounded to 10 significant figures. sigma
// must be non-negative; sigma == 0 returns |mu| exactly.
func (g *Generator) Price(mu, sigma float64) (decimal.Decimal, error) {
	if sigma < 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: sigma must be non-negative, got %v", domain.ErrInvalidParameter, sigma)
	}
	if sigma == 0 {
		return roundSignificant(math.Abs(mu), 10), nil
	}
	v := mu + sigma*rand.NormFloat64()
	return roundSignificant(math.Abs(v), 10), nil
}

// Volume samples Poisson(lambda), clamped to a minimum of 1. lambda must be
// strictly positive.
func (g *Generator) Volume(lambda float64) (int64, error) {
	if lambda <= 0 {
		return 0, fmt.Errorf("%w: lambda must be positive, got %v", domain.ErrInvalidParameter, lambda)
	}
	n := knuthPoisson(lambda)
	if n < 1 {
		n = 1
	}
	return n, nil
}

// knuthPoisson draws from Poisson(lambda) via Knuth's multiplicative
// algorithm. Adequate for the moderate lambda values used in test fixtures;
// not intended for lambda in the thousands.
func knuthPoisson(lambda float64) int64 {
	l := math.Exp(-lambda)
	k := int64(0)
	p := 1.0
	for {
		k++
		p *= rand.Float64()
		if p <= l {
			return k - 1
		}
	}
}

// CorrelatedPrices samples an AR(1)-correlated series of n positive prices
// around mu with spread sigma and lag-1 correlation rho ∈ [-1, 1].
func (g *Generator) CorrelatedPrices(mu, sigma, rho float64, n int) ([]decimal.Decimal, error) {
	if rho < -1 || rho > 1 {
		return nil, fmt.Errorf("%w: rho must be in [-1, 1], got %v", domain.ErrInvalidParameter, rho)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", domain.ErrInvalidParameter, n)
	}

	out := make([]decimal.Decimal, n)
	z := rand.NormFloat64()
	out[0] = roundSignificant(math.Abs(mu+sigma*z), 10)
	for i := 1; i < n; i++ {
		eps := rand.NormFloat64()
		z = rho*z + math.Sqrt(1-rho*rho)*eps
		out[i] = roundSignificant(math.Abs(mu+sigma*z), 10)
	}
	return out, nil
}

// SettlementDate advances today by cycle's business-day count against the
// generator's configured calendar.
func (g *Generator) SettlementDate(today time.Time, cycle SettlementCycle) (time.Time, error) {
	return g.cal.AddBusinessDays(today, cycle.days())
}

const (
	marketOpenHour    = 9
	marketOpenMinute  = 30
	marketCloseHour   = 16
	marketCloseMinute = 0
)

// MarketHoursTimestamp returns a second-granularity timestamp uniformly
// distributed within the 9:30–16:00 trading window on the given day, in the
// day's own location.
func (g *Generator) MarketHoursTimestamp(day time.Time) time.Time {
	open := time.Date(day.Year(), day.Month(), day.Day(), marketOpenHour, marketOpenMinute, 0, 0, day.Location())
	close := time.Date(day.Year(), day.Month(), day.Day(), marketCloseHour, marketCloseMinute, 0, 0, day.Location())
	windowSeconds := int64(close.Sub(open).Seconds())
	offset := rand.Int63n(windowSeconds + 1)
	return open.Add(time.Duration(offset) * time.Second)
}

// NewRequestKey mints a request key of the form "{prefix}-{ms-since-epoch}-
// {4-digit suffix}". The suffix is derived solely from the atomic sequence,
// guaranteeing distinct output across any two consecutive calls from the
// same or different goroutines — no random draw is involved, so there is no
// collision risk to reason about.
func (g *Generator) NewRequestKey(prefix string) string {
	ms := time.Now().UnixMilli()
	seq := g.seq.Add(1)
	suffix := seq % 10000
	return fmt.Sprintf("%s-%d-%04d", prefix, ms, suffix)
}

// AccountID mints an account identifier of the form "{prefix}-{8-digit
// zero-padded random}".
func (g *Generator) AccountID(prefix string) string {
	return fmt.Sprintf("%s-%08d", prefix, rand.Intn(100_000_000))
}

// OrderID mints a globally-unique order/trade identifier, the same
// uuid.New().String() convention the teacher uses for OrderID/TradeID/
// WebhookID minting.
func (g *Generator) OrderID() string {
	return uuid.New().String()
}

// roundSignificant rounds v to sig significant figures using banker's
// rounding via decimal.Decimal, matching the ledger's rounding convention.
func roundSignificant(v float64, sig int) decimal.Decimal {
	if v == 0 {
		return decimal.Zero
	}
	d := decimal.NewFromFloat(v)
	exp := d.Exponent()
	numDigits := len(d.Coefficient().String())
	places := int32(sig-numDigits) - exp
	return d.RoundBank(places)
}
