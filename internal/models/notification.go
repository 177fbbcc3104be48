package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is either a broadcast (TenantID nil) or addressed to one tenant.
type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TenantID  *uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	Read      bool       `json:"read" db:"-"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
