// Package pricing derives cart and order money totals from line items.
// It is pure: callers recompute totals after every cart mutation and persist
// the result, so stored totals are always reproducible from the stored lines.
package pricing

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the items subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(100)
	// FlatShippingFee applies whenever the subtotal is at or below the threshold.
	FlatShippingFee = decimal.NewFromInt(10)
	// TaxRate is applied to the items subtotal.
	TaxRate = decimal.NewFromFloat(0.15)
)

// Line is the pricing-relevant slice of a cart or order line item.
type Line struct {
	Price decimal.Decimal
	Qty   int
}

// Totals holds the four derived money fields, each independently rounded
// half-up to 2 decimal places so they reproduce exactly from stored values.
type Totals struct {
	Items    decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Calculate computes totals for a list of lines. An empty list yields all
// zeroes, which is also the state of a cart after checkout empties it.
func Calculate(lines []Line) Totals {
	if len(lines) == 0 {
		return Zero()
	}

	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	items = items.Round(2)

	shipping := FlatShippingFee
	if items.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	shipping = shipping.Round(2)

	tax := items.Mul(TaxRate).Round(2)
	total := items.Add(shipping).Add(tax).Round(2)

	return Totals{Items: items, Shipping: shipping, Tax: tax, Total: total}
}

// Zero returns all-zero totals for an emptied cart.
func Zero() Totals {
	return Totals{Items: decimal.Zero, Shipping: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
}
