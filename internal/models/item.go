package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a catalog entry supplying default price, discount and GST rate.
// Changing an Item never touches invoices that already used it.
type Item struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	HSNCode     *string   `json:"hsn_code" db:"hsn_code"`
	Price       float64   `json:"price" db:"price"`
	Discount    float64   `json:"discount" db:"discount"`
	GSTRate     float64   `json:"gst_rate" db:"gst_rate"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
