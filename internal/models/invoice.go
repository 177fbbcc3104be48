package models

import (
	"time"

	"github.com/google/uuid"
)

// Invoice stores the computed totals at full precision together with an
// immutable snapshot of its rows.
type Invoice struct {
	ID                     uuid.UUID     `json:"id" db:"id"`
	TenantID               uuid.UUID     `json:"tenant_id" db:"tenant_id"`
	CustomerID             uuid.UUID     `json:"customer_id" db:"customer_id"`
	InvoiceNumber          string        `json:"invoice_number" db:"invoice_number"`
	InvoiceDate            time.Time     `json:"invoice_date" db:"invoice_date"`
	OverallDiscountPercent float64       `json:"overall_discount_percent" db:"overall_discount_percent"`
	Subtotal               float64       `json:"subtotal" db:"subtotal"`
	TotalItemDiscount      float64       `json:"total_item_discount" db:"total_item_discount"`
	TotalOverallDiscount   float64       `json:"total_overall_discount" db:"total_overall_discount"`
	TotalAmount            float64       `json:"total_amount" db:"total_amount"`
	TaxAmount              float64       `json:"tax_amount" db:"tax_amount"`
	GrandTotal             float64       `json:"grand_total" db:"grand_total"`
	Notes                  *string       `json:"notes" db:"notes"`
	Items                  []InvoiceItem `json:"items" db:"-"`
	CreatedAt              time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at" db:"updated_at"`
}

// InvoiceItem is one snapshotted row. Amount is the final amount including tax.
type InvoiceItem struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	InvoiceID            uuid.UUID `json:"invoice_id" db:"invoice_id"`
	Position             int       `json:"position" db:"position"`
	ItemName             string    `json:"item_name" db:"item_name"`
	Description          *string   `json:"description" db:"description"`
	Quantity             float64   `json:"quantity" db:"quantity"`
	Price                float64   `json:"price" db:"price"`
	Discount             float64   `json:"discount" db:"discount"`
	GSTRate              float64   `json:"gst_rate" db:"gst_rate"`
	GrossAmount          float64   `json:"gross_amount" db:"gross_amount"`
	DiscountAmount       float64   `json:"discount_amount" db:"discount_amount"`
	OverallDiscountShare float64   `json:"overall_discount_share" db:"overall_discount_share"`
	TaxableValue         float64   `json:"taxable_value" db:"taxable_value"`
	TaxAmount            float64   `json:"tax_amount" db:"tax_amount"`
	Amount               float64   `json:"amount" db:"amount"`
}

// InvoiceDetail is an invoice joined with its customer.
type InvoiceDetail struct {
	Invoice
	Customer Customer `json:"customer"`
}

// InvoiceFilter narrows invoice listings and exports.
type InvoiceFilter struct {
	From   *time.Time
	To     *time.Time
	Search string
	Limit  int
	Offset int
}
