package stub

import (
	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// Level is a single rung of a synthetic depth ladder: a price and the
// quantity available to fill at it.
type Level struct {
	Price    decimal.Decimal
	Quantity int64
}

func bidLevelLess(a, b Level) bool {
	return a.Price.GreaterThan(b.Price)
}

func askLevelLess(a, b Level) bool {
	return a.Price.LessThan(b.Price)
}

// DepthLadder is a B-tree-ordered stack of synthetic price levels that a
// stub response generator walks to build a multi-level partial-fill
// sequence — e.g. a large market order that must sweep three price levels
// before it is fully filled. Ordering mirrors a real order book's
// price-time priority (best price first) without any matching logic.
type DepthLadder struct {
	levels *btree.BTreeG[Level]
}

// NewBidLadder creates a ladder ordered price-descending (best bid first).
func NewBidLadder() *DepthLadder {
	const degree = 32
	return &DepthLadder{levels: btree.NewG[Level](degree, bidLevelLess)}
}

// NewAskLadder creates a ladder ordered price-ascending (best ask first).
func NewAskLadder() *DepthLadder {
	const degree = 32
	return &DepthLadder{levels: btree.NewG[Level](degree, askLevelLess)}
}

// AddLevel inserts or replaces a level at the given price.
func (d *DepthLadder) AddLevel(price decimal.Decimal, quantity int64) {
	d.levels.ReplaceOrInsert(Level{Price: price, Quantity: quantity})
}

// Len returns the number of distinct price levels.
func (d *DepthLadder) Len() int { return d.levels.Len() }

// Walk visits levels in priority order (best first), invoking fn on each
// until it returns false or the ladder is exhausted.
func (d *DepthLadder) Walk(fn func(Level) bool) {
	d.levels.Ascend(fn)
}

// Sweep consumes levels in priority order until quantity units have been
// allocated or the ladder is exhausted, returning the sequence of
// (price, filled-quantity) fills a multi-shot stub rule can turn into a
// sequence of partial-fill execution reports.
func (d *DepthLadder) Sweep(quantity int64) []Level {
	var fills []Level
	remaining := quantity
	d.Walk(func(lvl Level) bool {
		if remaining <= 0 {
			return false
		}
		take := lvl.Quantity
		if take > remaining {
			take = remaining
		}
		fills = append(fills, Level{Price: lvl.Price, Quantity: take})
		remaining -= take
		return remaining > 0
	})
	return fills
}
