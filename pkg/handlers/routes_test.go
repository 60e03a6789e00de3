package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
)

// guardMux registers every handler with a tenant middleware stub that
// answers 204 once the auth chain has passed, so the route guards can
// be exercised without a database behind them.
func guardMux(t *testing.T) (*http.ServeMux, *auth.Service) {
	t.Helper()
	logger := zap.NewNop()
	tokens := auth.NewService("test-key", time.Hour)
	authMW := auth.NewMiddleware(tokens, logger)
	stub := TenantMiddleware(func(http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}
	})

	mux := http.NewServeMux()
	NewAuthHandler(nil, logger).RegisterRoutes(mux, authMW)
	NewPatientsHandler(nil, logger).RegisterRoutes(mux, authMW, stub)
	NewConsultationsHandler(nil, logger).RegisterRoutes(mux, authMW, stub)
	NewPharmacyHandler(nil, logger).RegisterRoutes(mux, authMW, stub)
	return mux, tokens
}

func roleToken(t *testing.T, tokens *auth.Service, role string) string {
	t.Helper()
	tenantID := uuid.New()
	user := &models.User{ID: uuid.New(), Email: "staff@phc.test", Role: role}
	if role != models.RoleSuperAdmin {
		user.TenantID = &tenantID
	}
	token, err := tokens.IssueToken(user)
	require.NoError(t, err)
	return token
}

func TestRouteRoleGuards(t *testing.T) {
	mux, tokens := guardMux(t)
	patientID := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"pharmacist cannot list patients", "GET", "/api/patients", models.RolePharmacist, http.StatusForbidden},
		{"asha cannot list patients", "GET", "/api/patients", models.RoleASHA, http.StatusForbidden},
		{"lab tech cannot read stats", "GET", "/api/patients/stats", models.RoleLabTechnician, http.StatusForbidden},
		{"pharmacist cannot search globally", "GET", "/api/patients/global/ABHA-1", models.RolePharmacist, http.StatusForbidden},
		{"pharmacist cannot read vitals", "GET", "/api/patients/" + patientID + "/vitals", models.RolePharmacist, http.StatusForbidden},
		{"pharmacist cannot edit health id", "PUT", "/api/patients/" + patientID + "/health-id", models.RolePharmacist, http.StatusForbidden},
		{"nurse can list patients", "GET", "/api/patients", models.RoleNurse, http.StatusNoContent},
		{"admin can read stats", "GET", "/api/patients/stats", models.RoleHospitalAdmin, http.StatusNoContent},
		{"doctor can search globally", "GET", "/api/patients/global/ABHA-1", models.RoleDoctor, http.StatusNoContent},
		{"admin cannot record vitals", "POST", "/api/patients/" + patientID + "/vitals", models.RoleHospitalAdmin, http.StatusForbidden},
		{"nurse can record vitals", "POST", "/api/patients/" + patientID + "/vitals", models.RoleNurse, http.StatusNoContent},

		{"pharmacist cannot list consultations", "GET", "/api/consultations", models.RolePharmacist, http.StatusForbidden},
		{"asha cannot read consultation stats", "GET", "/api/consultations/stats", models.RoleASHA, http.StatusForbidden},
		{"admin can open a consultation", "POST", "/api/consultations", models.RoleHospitalAdmin, http.StatusNoContent},
		{"admin can list consultations", "GET", "/api/consultations", models.RoleHospitalAdmin, http.StatusNoContent},
		{"nurse cannot write a diagnosis", "PUT", "/api/consultations/" + patientID + "/diagnosis", models.RoleNurse, http.StatusForbidden},
		{"doctor can write a diagnosis", "PUT", "/api/consultations/" + patientID + "/diagnosis", models.RoleDoctor, http.StatusNoContent},

		{"nurse cannot read inventory", "GET", "/api/pharmacy/inventory", models.RoleNurse, http.StatusForbidden},
		{"doctor can read inventory", "GET", "/api/pharmacy/inventory", models.RoleDoctor, http.StatusNoContent},
		{"doctor cannot read low stock", "GET", "/api/pharmacy/low-stock", models.RoleDoctor, http.StatusForbidden},
		{"pharmacist can read low stock", "GET", "/api/pharmacy/low-stock", models.RolePharmacist, http.StatusNoContent},

		{"doctor cannot create staff", "POST", "/api/staff", models.RoleDoctor, http.StatusForbidden},
		{"nurse cannot list staff", "GET", "/api/staff", models.RoleNurse, http.StatusForbidden},
		// Super admin passes the guard; the empty body fails validation
		// before the service is reached.
		{"super admin passes the staff guard", "POST", "/api/staff", models.RoleSuperAdmin, http.StatusBadRequest},
		{"admin passes the staff guard", "POST", "/api/staff", models.RoleHospitalAdmin, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", roleToken(t, tokens, tt.role)))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouteGuardsRejectAnonymous(t *testing.T) {
	mux, _ := guardMux(t)

	for _, path := range []string{"/api/patients", "/api/consultations", "/api/pharmacy/inventory", "/api/staff"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
