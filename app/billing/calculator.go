// Package billing computes invoice line and header amounts.
//
// Arithmetic is exact decimal; nothing is rounded, so for prices and tax
// rates with two decimals a line tax carries at most six.
package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is the computed money of one invoice line.
type Line struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLine returns subtotal = qty × unitPrice, tax = subtotal × taxPercent / 100,
// total = subtotal + tax.
func ComputeLine(qty int, unitPrice, taxPercent decimal.Decimal) Line {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	tax := subtotal.Mul(taxPercent).Div(hundred)
	return Line{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// ComputeInvoiceTotals sums line subtotals and taxes. Empty input gives zeros.
func ComputeInvoiceTotals(lines []Line) (subtotal, tax decimal.Decimal) {
	subtotal, tax = decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
		tax = tax.Add(l.Tax)
	}
	return subtotal, tax
}

// GrandTotal is subtotal + tax − discount.
func GrandTotal(subtotal, tax, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Sub(discount)
}
