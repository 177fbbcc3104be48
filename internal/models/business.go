package models

import (
	"time"

	"github.com/google/uuid"
)

// Business is a tenant. Every customer, item and invoice belongs to exactly one.
type Business struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	Name                  string     `json:"name" db:"name"`
	OwnerName             string     `json:"owner_name" db:"owner_name"`
	Email                 string     `json:"email" db:"email"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	Phone                 *string    `json:"phone" db:"phone"`
	Address               *string    `json:"address" db:"address"`
	GSTIN                 *string    `json:"gstin" db:"gstin"`
	Role                  string     `json:"role" db:"role"`
	Status                string     `json:"status" db:"status"`
	SubscriptionStatus    string     `json:"subscription_status" db:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at" db:"subscription_expires_at"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

const (
	BusinessStatusActive   = "active"
	BusinessStatusInactive = "inactive"

	SubscriptionTrial   = "trial"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)
