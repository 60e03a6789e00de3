package tenant

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/auth"
)

// SlugHeader is the transport for the client-supplied tenant slug.
const SlugHeader = "X-Tenant-Slug"

// RequireTenant creates middleware that resolves the effective tenant
// and binds its partition pool into the request context. It runs AFTER
// auth middleware. Handlers and repositories below it read the scope
// from context and never construct a connection target themselves.
func RequireTenant(resolver *Resolver, router *Router, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.GetClaims(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			slug, err := resolver.Resolve(r.Context(), claims, r.Header.Get(SlugHeader))
			if err != nil {
				status, code := resolveStatus(err)
				writeError(w, status, code, err.Error())
				return
			}
			if slug == "" {
				// Elevated principal addressing a partition-scoped
				// route still has to say which partition.
				writeError(w, http.StatusBadRequest, "tenant_context_required", apperrors.ErrMissingTenantContext.Error())
				return
			}

			pool, err := router.Resolve(r.Context(), slug)
			if err != nil {
				// Construction failures are per-request server errors;
				// the router never caches them, so the next request
				// retries.
				logger.Error("failed to resolve tenant pool",
					zap.String("slug", string(slug)),
					zap.Error(err))
				writeError(w, http.StatusInternalServerError, "database_error", "Tenant partition unavailable")
				return
			}

			ctx := SetScope(r.Context(), &Scope{Slug: slug, Pool: pool})
			next(w, r.WithContext(ctx))
		}
	}
}

// resolveStatus maps resolver errors onto HTTP status and error code.
func resolveStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrMissingTenantContext):
		return http.StatusBadRequest, "tenant_context_required"
	case errors.Is(err, apperrors.ErrInvalidTenantSlug):
		return http.StatusBadRequest, "invalid_tenant_slug"
	case errors.Is(err, apperrors.ErrNoTenant):
		return http.StatusForbidden, "no_tenant"
	case errors.Is(err, apperrors.ErrTenantMismatch):
		return http.StatusForbidden, "tenant_mismatch"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
