package models

import "time"

// SalesSummary aggregates stored invoice figures over a period.
type SalesSummary struct {
	InvoiceCount  int     `json:"invoice_count"`
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"total_discount"`
	TaxableValue  float64 `json:"taxable_value"`
	TaxCollected  float64 `json:"tax_collected"`
	GrandTotal    float64 `json:"grand_total"`
}

// DailySales is one calendar day of a sales trend.
type DailySales struct {
	Date         time.Time `json:"date"`
	InvoiceCount int       `json:"invoice_count"`
	TaxCollected float64   `json:"tax_collected"`
	GrandTotal   float64   `json:"grand_total"`
}

// GSTRateBreakdown is the taxable value and tax collected at one GST rate.
type GSTRateBreakdown struct {
	GSTRate      float64 `json:"gst_rate"`
	TaxableValue float64 `json:"taxable_value"`
	TaxAmount    float64 `json:"tax_amount"`
}
