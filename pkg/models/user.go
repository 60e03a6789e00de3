package models

import (
	"time"

	"github.com/google/uuid"
)

// System roles. SUPER_ADMIN is the only cross-tenant role; everyone
// else is bound to exactly one centre.
const (
	RoleSuperAdmin    = "SUPER_ADMIN"
	RoleHospitalAdmin = "HOSPITAL_ADMIN"
	RoleDoctor        = "DOCTOR"
	RoleNurse         = "NURSE"
	RoleASHA          = "ASHA"
	RoleLabTechnician = "LAB_TECHNICIAN"
	RolePharmacist    = "PHARMACIST"
	RolePatient       = "PATIENT"
)

// StaffRoles is the subset of roles a hospital admin may create.
var StaffRoles = []string{RoleDoctor, RoleNurse, RoleASHA, RoleLabTechnician, RolePharmacist}

// ValidStaffRole reports whether role can be assigned to staff.
func ValidStaffRole(role string) bool {
	for _, r := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account in the management schema. TenantID is nil only for
// SUPER_ADMIN accounts.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
