package models

import (
	"time"

	"github.com/google/uuid"
)

// Query is a support ticket raised by a business.
type Query struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	Status    string    `json:"status" db:"status"`
	Reply     *string   `json:"reply" db:"reply"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	QueryOpen     = "open"
	QueryResolved = "resolved"
)
