package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phc-health/phc-engine/pkg/apperrors"
)

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, ErrorResponse(rec, http.StatusConflict, "conflict", "slug already exists"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "conflict", body["error"])
	assert.Equal(t, "slug already exists", body["message"])
}

func TestServiceStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrNotFound, http.StatusNotFound, "not_found"},
		{apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{apperrors.ErrRegistryConflict, http.StatusConflict, "registry_conflict"},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{apperrors.ErrInvalidTenantSlug, http.StatusBadRequest, "invalid_tenant_slug"},
		{apperrors.ErrMissingTenantContext, http.StatusBadRequest, "tenant_context_required"},
		{apperrors.ErrNoTenant, http.StatusForbidden, "no_tenant"},
		{apperrors.ErrTenantMismatch, http.StatusForbidden, "tenant_mismatch"},
		{errors.New("pool exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		status, code, _ := serviceStatus(tt.err)
		assert.Equal(t, tt.status, status, "error %v", tt.err)
		assert.Equal(t, tt.code, code, "error %v", tt.err)
	}
}

func TestServiceStatus_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("registering patient: %w", apperrors.ErrConflict)
	status, code, _ := serviceStatus(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "conflict", code)
}

func TestServiceStatus_HidesInternalDetail(t *testing.T) {
	_, _, message := serviceStatus(errors.New("password=hunter2 dial failed"))
	assert.Equal(t, "Internal server error", message)
}
