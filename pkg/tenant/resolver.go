package tenant

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
)

// Directory looks tenants up in the management schema.
type Directory interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// Resolver derives the effective tenant slug for a request from the
// authenticated principal and the client-supplied slug header. The
// principal's own tenant association is the source of truth; the header
// is transport. Non-elevated principals are cross-checked against the
// directory and rejected on mismatch.
type Resolver struct {
	directory Directory
	logger    *zap.Logger
}

// NewResolver creates a resolver backed by the given directory.
func NewResolver(directory Directory, logger *zap.Logger) *Resolver {
	return &Resolver{directory: directory, logger: logger}
}

// Resolve reconciles principal and supplied slug into one authoritative
// slug. For an elevated principal an absent slug yields the empty Slug,
// which is allowed for endpoints that do not need a partition.
func (r *Resolver) Resolve(ctx context.Context, claims *auth.Claims, supplied string) (Slug, error) {
	if claims == nil {
		return "", apperrors.ErrMissingTenantContext
	}

	if claims.Elevated() {
		if supplied == "" {
			return "", nil
		}
		slug, err := ParseSlug(supplied)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidTenantSlug, err)
		}
		return slug, nil
	}

	if supplied == "" {
		return "", apperrors.ErrMissingTenantContext
	}

	slug, err := ParseSlug(supplied)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidTenantSlug, err)
	}

	tenantID, ok := claims.TenantUUID()
	if !ok {
		return "", apperrors.ErrNoTenant
	}

	t, err := r.directory.GetBySlug(ctx, string(slug))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Unknown slug reads the same as someone else's slug.
			return "", apperrors.ErrTenantMismatch
		}
		return "", fmt.Errorf("failed to look up tenant %s: %w", slug, err)
	}

	if t.ID != tenantID {
		r.logger.Warn("tenant slug mismatch",
			zap.String("user_id", claims.Subject),
			zap.String("supplied_slug", string(slug)),
			zap.String("user_tenant_id", claims.TenantID))
		return "", apperrors.ErrTenantMismatch
	}

	if !t.Usable() {
		return "", fmt.Errorf("%w: tenant %s is not ready", apperrors.ErrForbidden, slug)
	}

	return slug, nil
}
