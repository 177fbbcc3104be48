package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description" db:"description"`
	Price        float64   `json:"price" db:"price"`
	Currency     string    `json:"currency" db:"currency"`
	DurationDays int       `json:"duration_days" db:"duration_days"`
	Features     []string  `json:"features" db:"features"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Transaction records one plan purchase attempt through the payment gateway.
type Transaction struct {
	ID               uuid.UUID `json:"id" db:"id"`
	TenantID         uuid.UUID `json:"tenant_id" db:"tenant_id"`
	PlanID           uuid.UUID `json:"plan_id" db:"plan_id"`
	Amount           float64   `json:"amount" db:"amount"`
	Currency         string    `json:"currency" db:"currency"`
	GatewayOrderID   string    `json:"gateway_order_id" db:"gateway_order_id"`
	GatewayPaymentID *string   `json:"gateway_payment_id" db:"gateway_payment_id"`
	Status           string    `json:"status" db:"status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

const (
	TransactionPending = "pending"
	TransactionPaid    = "paid"
	TransactionFailed  = "failed"
)
