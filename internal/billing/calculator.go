// Package billing computes invoice line items and totals.
//
// Every figure is carried at full float64 precision. Rounding to two decimal
// places happens only when a value is presented (see FormatAmount and Round2),
// so invoice creation, update, preview and rendering all reconcile against the
// same unrounded numbers.
package billing

import (
	"fmt"

	"gstbill/internal/common"
)

// LineItem is a fully resolved invoice row ready for calculation.
type LineItem struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"price"`
	DiscountPercent float64 `json:"discount"`
	GSTRatePercent  float64 `json:"gstRate"`
}

// LineItemResult carries the computed amounts for one row.
type LineItemResult struct {
	LineItem
	GrossAmount          float64 `json:"grossAmount"`
	DiscountAmount       float64 `json:"discountAmount"`
	NetAmount            float64 `json:"netAmount"`
	OverallDiscountShare float64 `json:"overallDiscountShare"`
	TaxableValue         float64 `json:"taxableValue"`
	TaxAmount            float64 `json:"taxAmount"`
	FinalAmount          float64 `json:"finalAmount"`
}

// InvoiceTotals aggregates a set of LineItemResults.
type InvoiceTotals struct {
	Subtotal             float64 `json:"subtotal"`
	TotalItemDiscount    float64 `json:"totalItemDiscount"`
	TotalOverallDiscount float64 `json:"totalOverallDiscount"`
	TotalTaxableValue    float64 `json:"totalTaxableValue"`
	TotalTax             float64 `json:"totalTax"`
	GrandTotal           float64 `json:"grandTotal"`
}

// Computation is the per-item breakdown together with its totals.
type Computation struct {
	Items  []LineItemResult `json:"items"`
	Totals InvoiceTotals    `json:"totals"`
}

// ComputeLineItem applies the item discount, then the item's proportional
// share of the overall discount, then GST on what remains.
func ComputeLineItem(item LineItem, overallDiscountPercent float64) LineItemResult {
	gross := item.UnitPrice * item.Quantity
	discount := gross * item.DiscountPercent / 100
	net := gross - discount
	share := net * overallDiscountPercent / 100
	taxable := net - share
	tax := taxable * item.GSTRatePercent / 100

	return LineItemResult{
		LineItem:             item,
		GrossAmount:          gross,
		DiscountAmount:       discount,
		NetAmount:            net,
		OverallDiscountShare: share,
		TaxableValue:         taxable,
		TaxAmount:            tax,
		FinalAmount:          taxable + tax,
	}
}

// ComputeLineItems maps ComputeLineItem over items in order.
func ComputeLineItems(items []LineItem, overallDiscountPercent float64) []LineItemResult {
	results := make([]LineItemResult, len(items))
	for i, item := range items {
		results[i] = ComputeLineItem(item, overallDiscountPercent)
	}
	return results
}

// SumResults adds up computed rows. An empty slice yields zero totals.
func SumResults(results []LineItemResult) InvoiceTotals {
	var totals InvoiceTotals
	for _, r := range results {
		totals.Subtotal += r.GrossAmount
		totals.TotalItemDiscount += r.DiscountAmount
		totals.TotalOverallDiscount += r.OverallDiscountShare
		totals.TotalTaxableValue += r.TaxableValue
		totals.TotalTax += r.TaxAmount
		totals.GrandTotal += r.FinalAmount
	}
	return totals
}

// ComputeInvoiceTotals returns the aggregate figures for items.
func ComputeInvoiceTotals(items []LineItem, overallDiscountPercent float64) InvoiceTotals {
	return SumResults(ComputeLineItems(items, overallDiscountPercent))
}

// Compute validates its input and returns the full breakdown. Nothing is
// computed when any item or the overall discount is invalid.
func Compute(items []LineItem, overallDiscountPercent float64) (*Computation, error) {
	if err := ValidateOverallDiscount(overallDiscountPercent); err != nil {
		return nil, err
	}
	for i, item := range items {
		if err := ValidateLineItem(i, item); err != nil {
			return nil, err
		}
	}

	results := ComputeLineItems(items, overallDiscountPercent)
	for i, r := range results {
		if err := checkResult(i, r); err != nil {
			return nil, err
		}
	}
	totals := SumResults(results)
	if !totals.finite() {
		return nil, common.NewValidationError("items", "invoice total is too large")
	}
	return &Computation{
		Items:  results,
		Totals: totals,
	}, nil
}

// checkResult rejects rows whose figures overflowed float64.
func checkResult(index int, r LineItemResult) error {
	if !isFinite(r.GrossAmount) {
		return common.NewValidationError(fmt.Sprintf("items[%d].quantity", index), "price times quantity is too large")
	}
	for _, v := range []float64{r.DiscountAmount, r.NetAmount, r.OverallDiscountShare, r.TaxableValue, r.TaxAmount, r.FinalAmount} {
		if !isFinite(v) {
			return common.NewValidationError(fmt.Sprintf("items[%d].price", index), "line amount is too large")
		}
	}
	return nil
}

func (t InvoiceTotals) finite() bool {
	for _, v := range []float64{t.Subtotal, t.TotalItemDiscount, t.TotalOverallDiscount, t.TotalTaxableValue, t.TotalTax, t.GrandTotal} {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
