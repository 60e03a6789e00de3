package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/services"
)

// TenantsHandler handles centre onboarding and platform administration.
type TenantsHandler struct {
	tenantService *services.TenantService
	logger        *zap.Logger
}

// NewTenantsHandler creates a new tenants handler.
func NewTenantsHandler(tenantService *services.TenantService, logger *zap.Logger) *TenantsHandler {
	return &TenantsHandler{tenantService: tenantService, logger: logger}
}

// RegisterRoutes registers the tenants handler's routes on the given mux.
// Registration is open so new centres can self-onboard; listing is the
// platform operator's view.
func (h *TenantsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/tenants", h.Register)
	mux.HandleFunc("GET /api/tenants",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(models.RoleSuperAdmin)(h.List)))
}

// Register handles POST /api/tenants.
// Creates the directory row, provisions the schema, and seeds the
// centre's admin account in one call.
func (h *TenantsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var params services.RegisterTenantParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if params.Name == "" || params.Slug == "" || params.AdminEmail == "" || params.AdminPassword == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "Name, slug, admin email, and admin password are required")
		return
	}

	result, err := h.tenantService.Register(r.Context(), params)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// List handles GET /api/tenants.
func (h *TenantsHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenantService.List(r.Context())
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, tenants); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *TenantsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
