package pos

import "math"

// DefaultTaxRate is the tax policy applied when no rate is configured.
const DefaultTaxRate = 0.10

// PricingSnapshot is the money breakdown derived from a set of line items.
// It is recomputed from scratch on every read and never stored, so it cannot
// drift from the cart it was derived from.
type PricingSnapshot struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// Price computes the pricing breakdown for the given line items. An empty
// item list yields all zeros. Tax is rounded to 2 decimals.
func Price(items []LineItem, taxRate float64) PricingSnapshot {
	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	rounded := round2(subtotal)
	tax := round2(subtotal * taxRate)
	return PricingSnapshot{
		Subtotal:  rounded,
		TaxAmount: tax,
		Total:     round2(rounded + tax),
	}
}

// Change returns the change due for the amount received. Insufficient
// payment yields zero change, never a negative value; underpayment is not an
// error at this layer.
func (p PricingSnapshot) Change(amountReceived float64) float64 {
	return math.Max(0, round2(amountReceived-p.Total))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
