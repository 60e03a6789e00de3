package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistryEntry maps a national health id to the tenant that owns the
// patient's record and the patient's local id within that partition.
// At most one entry exists per health id system-wide. This is the only
// data that legitimately crosses partition boundaries.
type RegistryEntry struct {
	HealthID  string    `json:"health_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	PatientID uuid.UUID `json:"patient_id"`
	CreatedAt time.Time `json:"created_at"`
}
