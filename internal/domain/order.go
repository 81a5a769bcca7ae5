package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderRequest is an immutable, fully validated order description. Once
// built it cannot be mutated — every field is read-only via accessor.
type OrderRequest struct {
	symbol          string
	side            Side
	orderType       OrderType
	price           decimal.Decimal
	hasPrice        bool
	quantity        int64
	timeInForce     TimeInForce
	account         string
	requestKey      string
	currency        string
	expectedOutcome ExpectedOutcome
	hasOutcome      bool
}

func (o *OrderRequest) Symbol() string                    { return o.symbol }
func (o *OrderRequest) Side() Side                        { return o.side }
func (o *OrderRequest) Type() OrderType                   { return o.orderType }
func (o *OrderRequest) Price() (decimal.Decimal, bool)    { return o.price, o.hasPrice }
func (o *OrderRequest) Quantity() int64                   { return o.quantity }
func (o *OrderRequest) TimeInForce() TimeInForce          { return o.timeInForce }
func (o *OrderRequest) Account() string                   { return o.account }
func (o *OrderRequest) RequestKey() string                { return o.requestKey }
func (o *OrderRequest) Currency() string                  { return o.currency }
func (o *OrderRequest) ExpectedOutcome() (ExpectedOutcome, bool) {
	return o.expectedOutcome, o.hasOutcome
}

// OrderRequestBuilder collects OrderRequest fields before validating them
// all at once in Build, per Design Notes §9 ("invalid combinations ... must
// be caught at build time").
type OrderRequestBuilder struct {
	req OrderRequest
}

// NewOrderRequest starts a builder for the given symbol, side, and type —
// the three required fields besides quantity.
func NewOrderRequest(symbol string, side Side, orderType OrderType) *OrderRequestBuilder {
	b := &OrderRequestBuilder{}
	b.req.symbol = symbol
	b.req.side = side
	b.req.orderType = orderType
	b.req.timeInForce = TimeInForceDay
	b.req.currency = "USD"
	return b
}

func (b *OrderRequestBuilder) Price(p decimal.Decimal) *OrderRequestBuilder {
	b.req.price = p
	b.req.hasPrice = true
	return b
}

func (b *OrderRequestBuilder) Quantity(q int64) *OrderRequestBuilder {
	b.req.quantity = q
	return b
}

func (b *OrderRequestBuilder) TimeInForce(t TimeInForce) *OrderRequestBuilder {
	b.req.timeInForce = t
	return b
}

func (b *OrderRequestBuilder) Account(a string) *OrderRequestBuilder {
	b.req.account = a
	return b
}

func (b *OrderRequestBuilder) RequestKey(k string) *OrderRequestBuilder {
	b.req.requestKey = k
	return b
}

func (b *OrderRequestBuilder) Currency(c string) *OrderRequestBuilder {
	b.req.currency = c
	return b
}

func (b *OrderRequestBuilder) ExpectedOutcome(o ExpectedOutcome) *OrderRequestBuilder {
	b.req.expectedOutcome = o
	b.req.hasOutcome = true
	return b
}

// Build validates the accumulated fields and returns the immutable
// OrderRequest, or a *ValidationError describing the first violation found.
func (b *OrderRequestBuilder) Build() (*OrderRequest, error) {
	if b.req.symbol == "" {
		return nil, &ValidationError{Message: "symbol is required"}
	}
	switch b.req.side {
	case SideBuy, SideSell, SideShortSell:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("invalid side: %q", b.req.side)}
	}
	switch b.req.orderType {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop, OrderTypeStopLimit:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("invalid order type: %q", b.req.orderType)}
	}
	if b.req.orderType.RequiresPrice() && !b.req.hasPrice {
		return nil, &ValidationError{Message: fmt.Sprintf("price is required for order type %q", b.req.orderType)}
	}
	if b.req.quantity <= 0 {
		return nil, &ValidationError{Message: "quantity must be a positive integer"}
	}
	switch b.req.timeInForce {
	case TimeInForceDay, TimeInForceGTC, TimeInForceIOC, TimeInForceFOK, TimeInForceGTD, TimeInForceAtClose:
	default:
		return nil, &ValidationError{Message: fmt.Sprintf("invalid time in force: %q", b.req.timeInForce)}
	}
	if b.req.currency == "" {
		b.req.currency = "USD"
	}

	result := b.req
	return &result, nil
}
