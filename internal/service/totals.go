package service

import "github.com/shopspring/decimal"

// LineInput is one order line for totals purposes.
type LineInput struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Totals holds every derived money figure of an order. RemainingAmount is
// deliberately not clamped at zero: a negative value means an overpayment
// and callers decide how to present it.
type Totals struct {
	LineTotals      []decimal.Decimal
	TotalAmount     decimal.Decimal
	DiscountedTotal decimal.Decimal
	RemainingAmount decimal.Decimal
}

// LineTotal is quantity times unit price, rounded to cents.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// ComputeTotals derives all money figures from the order lines, the discount
// and the amount paid so far. The discount cannot push the total below zero.
func ComputeTotals(lines []LineInput, discount, paid decimal.Decimal) Totals {
	t := Totals{
		LineTotals:  make([]decimal.Decimal, len(lines)),
		TotalAmount: decimal.Zero,
	}
	for i, line := range lines {
		t.LineTotals[i] = LineTotal(line.Quantity, line.UnitPrice)
		t.TotalAmount = t.TotalAmount.Add(t.LineTotals[i])
	}
	t.DiscountedTotal = t.TotalAmount.Sub(discount)
	if t.DiscountedTotal.IsNegative() {
		t.DiscountedTotal = decimal.Zero
	}
	t.RemainingAmount = t.DiscountedTotal.Sub(paid)
	return t
}
