package money

import "github.com/shopspring/decimal"

// TaxRate is the flat checkout tax applied on top of the cart subtotal.
var TaxRate = decimal.NewFromFloat(0.10)

// Line is a priced quantity, price in integer currency units.
type Line struct {
	Price    int64
	Quantity int
}

// Totals breaks down a checkout amount.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Calculate sums the lines and applies the tax rate.
func Calculate(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		lineTotal := decimal.NewFromInt(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// TotalAmount returns the grand total as the float the order payload carries.
func (t Totals) TotalAmount() float64 {
	return t.Total.InexactFloat64()
}
