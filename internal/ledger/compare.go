package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vinipx/quantaf/internal/domain"
)

// amountValues carries the (possibly absent) raw values for a single
// numeric field, one per source, before rounding/tolerance comparison.
type amountValues struct {
	fix, mq, api *decimal.Decimal
}

func amountPrice(r *domain.TradeRecord) (decimal.Decimal, bool)    { return r.Price, true }
func amountQuantity(r *domain.TradeRecord) (decimal.Decimal, bool) { return r.Quantity, true }
func amountAmount(r *domain.TradeRecord) (decimal.Decimal, bool)   { return r.Amount, true }

// decimalOf extracts a numeric field from each of the three (possibly
// nil) records via extract, recording absence as a nil pointer so the
// comparison below can render "N/A" for that side.
func decimalOf(fix, mq, api *domain.TradeRecord, extract func(*domain.TradeRecord) (decimal.Decimal, bool)) amountValues {
	get := func(r *domain.TradeRecord) *decimal.Decimal {
		if r == nil {
			return nil
		}
		v, ok := extract(r)
		if !ok {
			return nil
		}
		return &v
	}
	return amountValues{fix: get(fix), mq: get(mq), api: get(api)}
}

func dateOf(r *domain.TradeRecord) *time.Time {
	if r == nil {
		return nil
	}
	return r.SettlementDate
}

func stringOf(r *domain.TradeRecord, extract func(*domain.TradeRecord) string) *string {
	if r == nil {
		return nil
	}
	v := extract(r)
	return &v
}

// roundSignificant rounds d to sig significant figures using banker's
// rounding, the same convention the generator applies to sampled prices.
func roundSignificant(d decimal.Decimal, sig int32) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	numDigits := int32(len(d.Coefficient().String()))
	places := sig - numDigits - d.Exponent()
	return d.RoundBank(places)
}

// decimalsApproxEqual reports whether a and b are within tolerance of each
// other. Per spec.md §4.6/§9, a side absent from a source is not a
// mismatch by itself — only present pairs are required to agree.
func decimalsApproxEqual(a, b *decimal.Decimal, tolerance decimal.Decimal) bool {
	if a == nil || b == nil {
		return true
	}
	return a.Sub(*b).Abs().LessThanOrEqual(tolerance)
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// compareAmounts rounds each present value to l.precision significant
// figures and requires every present pair (fix/mq, fix/api, mq/api) to
// agree within l.tolerance.
func (l *Ledger) compareAmounts(name string, v amountValues) domain.FieldVerdict {
	round := func(p *decimal.Decimal) *decimal.Decimal {
		if p == nil {
			return nil
		}
		r := roundSignificant(*p, l.precision)
		return &r
	}
	fix, mq, api := round(v.fix), round(v.mq), round(v.api)

	match := decimalsApproxEqual(fix, mq, l.tolerance) &&
		decimalsApproxEqual(fix, api, l.tolerance) &&
		decimalsApproxEqual(mq, api, l.tolerance)

	return domain.FieldVerdict{
		FieldName: name,
		FixValue:  decimalString(fix),
		MqValue:   decimalString(mq),
		ApiValue:  decimalString(api),
		Match:     match,
	}
}

// compareDates requires exact equality between every present pair of
// dates; nulls compare equal (spec.md §4.6 field table, row 4).
func (l *Ledger) compareDates(name string, fix, mq, api *time.Time) domain.FieldVerdict {
	eq := func(a, b *time.Time) bool {
		if a == nil || b == nil {
			return true
		}
		return a.Equal(*b)
	}
	match := eq(fix, mq) && eq(fix, api) && eq(mq, api)

	render := func(t *time.Time) *string {
		if t == nil {
			return nil
		}
		s := t.Format("2006-01-02")
		return &s
	}

	return domain.FieldVerdict{
		FieldName: name,
		FixValue:  render(fix),
		MqValue:   render(mq),
		ApiValue:  render(api),
		Match:     match,
	}
}

// compareStrings requires exact equality between every present pair of
// strings; a side absent from a source contributes no mismatch.
func (l *Ledger) compareStrings(name string, fix, mq, api *string) domain.FieldVerdict {
	eq := func(a, b *string) bool {
		if a == nil || b == nil {
			return true
		}
		return *a == *b
	}
	match := eq(fix, mq) && eq(fix, api) && eq(mq, api)

	return domain.FieldVerdict{
		FieldName: name,
		FixValue:  fix,
		MqValue:   mq,
		ApiValue:  api,
		Match:     match,
	}
}
