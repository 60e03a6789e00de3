package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/phc-health/phc-engine/pkg/apperrors"
)

// TenantMiddleware binds a tenant partition into the request context.
// Route registration takes it as a value so handlers stay decoupled
// from the resolver and router wiring.
type TenantMiddleware func(http.HandlerFunc) http.HandlerFunc

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// serviceStatus maps service-layer errors onto an HTTP status and a
// stable error code. Unknown errors are 500s and their text stays out
// of the response body.
func serviceStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, apperrors.ErrRegistryConflict):
		return http.StatusConflict, "registry_conflict", err.Error()
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden", err.Error()
	case errors.Is(err, apperrors.ErrInvalidTenantSlug):
		return http.StatusBadRequest, "invalid_tenant_slug", err.Error()
	case errors.Is(err, apperrors.ErrMissingTenantContext):
		return http.StatusBadRequest, "tenant_context_required", err.Error()
	case errors.Is(err, apperrors.ErrNoTenant):
		return http.StatusForbidden, "no_tenant", err.Error()
	case errors.Is(err, apperrors.ErrTenantMismatch):
		return http.StatusForbidden, "tenant_mismatch", err.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}
