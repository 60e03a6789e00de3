package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
)

func middlewareRouter(t *testing.T) *Router {
	t.Helper()
	router, err := NewRouter(RouterConfig{
		BaseConnString: "postgres://phc:x@localhost:5432/phc_hms",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(router.Close)
	return router
}

func requestWithClaims(claims *auth.Claims, slug string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	if slug != "" {
		req.Header.Set(SlugHeader, slug)
	}
	if claims != nil {
		req = req.WithContext(auth.SetClaims(req.Context(), claims))
	}
	return req
}

func TestRequireTenant_RejectsUnauthenticated(t *testing.T) {
	mw := RequireTenant(NewResolver(&fakeDirectory{}, zap.NewNop()), middlewareRouter(t), zap.NewNop())
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, requestWithClaims(nil, "phc_rampur"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireTenant_RejectsMissingSlug(t *testing.T) {
	tenantID := uuid.New()
	mw := RequireTenant(NewResolver(&fakeDirectory{}, zap.NewNop()), middlewareRouter(t), zap.NewNop())
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, requestWithClaims(staffClaims(tenantID), ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireTenant_ElevatedStillNeedsAPartition(t *testing.T) {
	// Partition-scoped routes cannot run without a partition, even for
	// the platform operator.
	mw := RequireTenant(NewResolver(&fakeDirectory{}, zap.NewNop()), middlewareRouter(t), zap.NewNop())
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, requestWithClaims(adminClaims(), ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireTenant_RejectsForeignSlug(t *testing.T) {
	directory := &fakeDirectory{tenants: map[string]*models.Tenant{
		"phc_other": {ID: uuid.New(), Slug: "phc_other", Status: models.TenantStatusActive},
	}}
	mw := RequireTenant(NewResolver(directory, zap.NewNop()), middlewareRouter(t), zap.NewNop())
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, requestWithClaims(staffClaims(uuid.New()), "phc_other"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireTenant_RejectsInvalidSlug(t *testing.T) {
	mw := RequireTenant(NewResolver(&fakeDirectory{}, zap.NewNop()), middlewareRouter(t), zap.NewNop())
	handler := mw(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})

	rec := httptest.NewRecorder()
	handler(rec, requestWithClaims(staffClaims(uuid.New()), "phc;drop"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScopeRoundTrip(t *testing.T) {
	scope := &Scope{Slug: "phc_rampur"}
	ctx := SetScope(requestWithClaims(nil, "").Context(), scope)

	got, ok := GetScope(ctx)
	require.True(t, ok)
	assert.Equal(t, scope, got)
}
