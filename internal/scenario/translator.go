// Package scenario implements the deterministic keyword-based translator
// that maps free-form natural-language trading intent to a structured
// OrderRequest when no external language model is available (spec.md
// §4.7), plus an optional LLM-backed fallback chain (§6, SPEC_FULL.md §6).
package scenario

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vinipx/quantaf/internal/domain"
)

// symbolAlias pairs a plain-English company reference with its ticker
// symbol. Kept as an ordered slice, not a map, so extractSymbol's scan order
// is fixed regardless of Go's randomized map iteration (spec.md §4.7
// "identical input ⇒ identical output").
type symbolAlias struct {
	alias  string
	symbol string
}

// symbolAliases maps common plain-English company references to their
// ticker symbol (spec.md §4.7 "Symbol").
var symbolAliases = []symbolAlias{
	{"apple", "AAPL"},
	{"google", "GOOG"},
	{"alphabet", "GOOG"},
	{"microsoft", "MSFT"},
	{"tesla", "TSLA"},
	{"amazon", "AMZN"},
}

// knownSymbols is the closed dictionary of tickers the translator
// recognises as a bare, case-insensitive word in the input.
var knownSymbols = map[string]struct{}{
	"AAPL": {},
	"GOOG": {},
	"MSFT": {},
	"TSLA": {},
	"AMZN": {},
}

var (
	quantityPattern = regexp.MustCompile(`\b([1-9][0-9]{0,6})\b\s*(?:shares?|units?|lots?)?`)
	pricePattern    = regexp.MustCompile(`(?:at|@|price)\s*\$?([0-9]+(?:\.[0-9]+)?)`)
	wordPattern     = regexp.MustCompile(`[A-Za-z]+`)
)

const (
	defaultQuantity = 100
	defaultPrice    = "100.0"
	maxQuantity     = 9_999_999
)

// Translator deterministically extracts a structured OrderRequest from
// free-form English. Identical input always produces identical output —
// no I/O, no randomness (spec.md §4.7).
type Translator struct{}

// New creates a Translator.
func New() *Translator {
	return &Translator{}
}

// Translate parses text into an OrderRequest, applying the rules in
// spec.md §4.7 in the order listed; later rules override earlier ones for
// the same slot where the rule text says so.
func (t *Translator) Translate(text string) (*domain.OrderRequest, error) {
	lower := strings.ToLower(text)

	side := domain.SideBuy
	if strings.Contains(lower, "sell") || strings.Contains(lower, "short") {
		side = domain.SideSell
	}

	orderType := domain.OrderTypeMarket
	if strings.Contains(lower, "limit") {
		orderType = domain.OrderTypeLimit
	}
	if strings.Contains(lower, "stop") {
		orderType = domain.OrderTypeStop
	}

	tif := domain.TimeInForceDay
	if strings.Contains(lower, "close") || strings.Contains(lower, "moc") {
		tif = domain.TimeInForceAtClose
	}
	if strings.Contains(lower, "gtc") {
		tif = domain.TimeInForceGTC
	}
	if strings.Contains(lower, "ioc") || strings.Contains(lower, "immediate") {
		tif = domain.TimeInForceIOC
	}

	symbol := extractSymbol(lower)
	quantity := extractQuantity(lower)

	builder := domain.NewOrderRequest(symbol, side, orderType).
		Quantity(quantity).
		TimeInForce(tif).
		Currency("USD")

	if orderType != domain.OrderTypeMarket {
		builder = builder.Price(extractPrice(lower))
	}

	switch {
	case strings.Contains(lower, "reject") || strings.Contains(lower, "fat-finger") || strings.Contains(lower, "fat finger"):
		builder = builder.ExpectedOutcome(domain.OutcomeRejected)
	case strings.Contains(lower, "fill"):
		builder = builder.ExpectedOutcome(domain.OutcomeFill)
	}

	return builder.Build()
}

// extractSymbol looks up a known-symbol dictionary: first common aliases
// ("apple" -> AAPL), then any bare word that is itself a recognised
// ticker. When more than one alias appears in the input, the earliest
// occurring by string index wins, so the result depends only on the input
// text and never on map iteration order. Falls back to "UNKNOWN" (spec.md
// §4.7).
func extractSymbol(lower string) string {
	bestIdx := -1
	bestSym := ""
	for _, a := range symbolAliases {
		idx := strings.Index(lower, a.alias)
		if idx == -1 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			bestSym = a.symbol
		}
	}
	if bestIdx != -1 {
		return bestSym
	}
	for _, word := range wordPattern.FindAllString(lower, -1) {
		upper := strings.ToUpper(word)
		if _, ok := knownSymbols[upper]; ok {
			return upper
		}
	}
	return "UNKNOWN"
}

// extractQuantity matches the first integer in 1..9,999,999 optionally
// followed by "share(s)|unit(s)|lot(s)"; defaults to 100.
func extractQuantity(lower string) int64 {
	m := quantityPattern.FindStringSubmatch(lower)
	if m == nil {
		return defaultQuantity
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || v < 1 || v > maxQuantity {
		return defaultQuantity
	}
	return v
}

// extractPrice matches the first number following "at", "@", or "price";
// defaults to 100.0. Only called when the order type requires a price.
func extractPrice(lower string) decimal.Decimal {
	m := pricePattern.FindStringSubmatch(lower)
	if m == nil {
		d, _ := decimal.NewFromString(defaultPrice)
		return d
	}
	v, err := decimal.NewFromString(m[1])
	if err != nil {
		d, _ := decimal.NewFromString(defaultPrice)
		return d
	}
	return v
}
