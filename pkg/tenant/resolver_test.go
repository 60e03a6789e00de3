package tenant

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
)

type fakeDirectory struct {
	tenants map[string]*models.Tenant
	err     error
}

func (f *fakeDirectory) GetBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tenants[slug]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return t, nil
}

func staffClaims(tenantID uuid.UUID) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
		Role:             models.RoleDoctor,
		TenantID:         tenantID.String(),
	}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
		Role:             models.RoleSuperAdmin,
	}
}

func TestResolver_StaffWithMatchingSlug(t *testing.T) {
	tenantID := uuid.New()
	resolver := NewResolver(&fakeDirectory{tenants: map[string]*models.Tenant{
		"phc_rampur": {ID: tenantID, Slug: "phc_rampur", Status: models.TenantStatusActive},
	}}, zap.NewNop())

	slug, err := resolver.Resolve(context.Background(), staffClaims(tenantID), "phc_rampur")
	require.NoError(t, err)
	assert.Equal(t, Slug("phc_rampur"), slug)
}

func TestResolver_StaffWithForeignSlug(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{tenants: map[string]*models.Tenant{
		"phc_other": {ID: uuid.New(), Slug: "phc_other", Status: models.TenantStatusActive},
	}}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), staffClaims(uuid.New()), "phc_other")
	assert.ErrorIs(t, err, apperrors.ErrTenantMismatch)
}

func TestResolver_StaffWithUnknownSlug(t *testing.T) {
	// An unknown slug must be indistinguishable from someone else's.
	resolver := NewResolver(&fakeDirectory{tenants: map[string]*models.Tenant{}}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), staffClaims(uuid.New()), "phc_ghost")
	assert.ErrorIs(t, err, apperrors.ErrTenantMismatch)
}

func TestResolver_StaffWithoutSlug(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), staffClaims(uuid.New()), "")
	assert.ErrorIs(t, err, apperrors.ErrMissingTenantContext)
}

func TestResolver_StaffWithInvalidSlug(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), staffClaims(uuid.New()), "phc;drop")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTenantSlug)
}

func TestResolver_StaffWithoutTenant(t *testing.T) {
	claims := staffClaims(uuid.New())
	claims.TenantID = ""
	resolver := NewResolver(&fakeDirectory{}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), claims, "phc_rampur")
	assert.ErrorIs(t, err, apperrors.ErrNoTenant)
}

func TestResolver_StaffAgainstUnusableTenant(t *testing.T) {
	tenantID := uuid.New()
	for _, status := range []string{models.TenantStatusProvisioning, models.TenantStatusFailed} {
		resolver := NewResolver(&fakeDirectory{tenants: map[string]*models.Tenant{
			"phc_rampur": {ID: tenantID, Slug: "phc_rampur", Status: status},
		}}, zap.NewNop())

		_, err := resolver.Resolve(context.Background(), staffClaims(tenantID), "phc_rampur")
		assert.ErrorIs(t, err, apperrors.ErrForbidden, "status %s", status)
	}
}

func TestResolver_ElevatedWithSlug(t *testing.T) {
	// Elevated principals skip the directory cross-check entirely.
	resolver := NewResolver(&fakeDirectory{}, zap.NewNop())

	slug, err := resolver.Resolve(context.Background(), adminClaims(), "phc_rampur")
	require.NoError(t, err)
	assert.Equal(t, Slug("phc_rampur"), slug)
}

func TestResolver_ElevatedWithoutSlug(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{}, zap.NewNop())

	slug, err := resolver.Resolve(context.Background(), adminClaims(), "")
	require.NoError(t, err)
	assert.Equal(t, Slug(""), slug)
}

func TestResolver_ElevatedWithInvalidSlug(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), adminClaims(), "Not A Slug")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTenantSlug)
}

func TestResolver_NilClaims(t *testing.T) {
	resolver := NewResolver(&fakeDirectory{}, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), nil, "phc_rampur")
	assert.ErrorIs(t, err, apperrors.ErrMissingTenantContext)
}
