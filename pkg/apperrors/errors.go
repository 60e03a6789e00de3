package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrRegistryConflict   = errors.New("health id already registered in another centre")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")

	// Tenant context errors. All are terminal for the calling request.
	ErrMissingTenantContext = errors.New("tenant context required")
	ErrInvalidTenantSlug    = errors.New("invalid tenant slug")
	ErrNoTenant             = errors.New("user is not associated with any tenant")
	ErrTenantMismatch       = errors.New("tenant slug does not match user's tenant")
)
