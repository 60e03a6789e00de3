package models

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a clinical record inside one tenant's partition.
// HealthID is the national health-account id; it is optional, and when
// present it is mirrored into the cross-tenant registry.
type Patient struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	HealthID    *string   `json:"health_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PatientStats summarizes a centre's patient load.
type PatientStats struct {
	TotalPatients int `json:"total_patients"`
	NewPatients   int `json:"new_patients"`
}

// GlobalPatient is a registry hit resolved back to its home partition.
type GlobalPatient struct {
	Patient
	HomePHC      string    `json:"home_phc"`
	HomeTenant   uuid.UUID `json:"home_tenant_id"`
	HomeSlug     string    `json:"home_slug"`
	RegisteredAt time.Time `json:"registered_at"`
}
