package billing

import "github.com/shopspring/decimal"

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatAmount renders v with exactly two decimal places.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// Rounded returns a copy of t with every figure rounded for display.
func (t InvoiceTotals) Rounded() InvoiceTotals {
	return InvoiceTotals{
		Subtotal:             Round2(t.Subtotal),
		TotalItemDiscount:    Round2(t.TotalItemDiscount),
		TotalOverallDiscount: Round2(t.TotalOverallDiscount),
		TotalTaxableValue:    Round2(t.TotalTaxableValue),
		TotalTax:             Round2(t.TotalTax),
		GrandTotal:           Round2(t.GrandTotal),
	}
}
