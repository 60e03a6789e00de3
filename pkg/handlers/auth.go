package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/services"
)

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token plus the principal's user and
// home centre records.
type LoginResponse struct {
	Token  string         `json:"token"`
	User   *models.User   `json:"user"`
	Tenant *models.Tenant `json:"tenant,omitempty"`
}

// MeResponse represents the response for the /api/auth/me endpoint.
type MeResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id,omitempty"`
}

// AuthHandler handles login, identity, and staff management requests.
type AuthHandler struct {
	authService *services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
// Login is the only unauthenticated route in the API. Staff accounts
// live in the management schema, so staff routes need no partition
// context, only an admin role. A super admin passes the role gate but
// the service still requires a tenant binding to act on.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	admins := []string{models.RoleHospitalAdmin, models.RoleSuperAdmin}

	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/me", authMiddleware.RequireAuth(h.Me))
	mux.HandleFunc("POST /api/staff",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(admins...)(h.CreateStaff)))
	mux.HandleFunc("GET /api/staff",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(admins...)(h.ListStaff)))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "Email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, LoginResponse{
		Token:  result.Token,
		User:   result.User,
		Tenant: result.Tenant,
	}); err != nil {
		h.logger.Error("Failed to encode login response", zap.Error(err))
	}
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok || claims == nil {
		h.writeError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated")
		return
	}

	if err := WriteJSON(w, http.StatusOK, MeResponse{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
		TenantID: claims.TenantID,
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// CreateStaff handles POST /api/staff.
func (h *AuthHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var params services.RegisterUserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	user, err := h.authService.CreateStaff(r.Context(), params)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, user); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// ListStaff handles GET /api/staff.
func (h *AuthHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListStaff(r.Context())
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, users); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
