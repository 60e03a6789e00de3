// Package models contains domain types for phc-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant statuses. A tenant is never visible to login or clinical flows
// until its partition is fully materialized.
const (
	TenantStatusProvisioning = "provisioning"
	TenantStatusActive       = "active"
	TenantStatusFailed       = "failed"
)

// Tenant represents one Primary Health Centre. The slug names the
// tenant's isolated schema and is immutable once provisioned.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Usable reports whether the tenant's partition is ready for traffic.
func (t *Tenant) Usable() bool {
	return t.Status == TenantStatusActive
}
