package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/services"
)

// RegisterPatientResponse wraps a created patient together with the
// registry outcome, so the ward sees a duplicate health id without
// losing the record it just created.
type RegisterPatientResponse struct {
	Patient         *models.Patient `json:"patient"`
	RegistryWarning string          `json:"registry_warning,omitempty"`
}

// PatientsHandler handles patient registration, search, and vitals.
type PatientsHandler struct {
	patientService *services.PatientService
	logger         *zap.Logger
}

// NewPatientsHandler creates a new patients handler.
func NewPatientsHandler(patientService *services.PatientService, logger *zap.Logger) *PatientsHandler {
	return &PatientsHandler{patientService: patientService, logger: logger}
}

// RegisterRoutes registers the patients handler's routes on the given mux.
// All routes are partition-scoped and restricted to the clinical roles;
// vitals entry is further restricted to the ward roles. Pharmacy and lab
// staff never see patient records directly.
func (h *PatientsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	clinical := []string{models.RoleDoctor, models.RoleNurse, models.RoleHospitalAdmin}
	ward := []string{models.RoleDoctor, models.RoleNurse}

	mux.HandleFunc("POST /api/patients",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.Register))))
	mux.HandleFunc("GET /api/patients",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.List))))
	mux.HandleFunc("GET /api/patients/stats",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.Stats))))
	mux.HandleFunc("GET /api/patients/global/{healthId}",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.SearchGlobal))))
	mux.HandleFunc("PUT /api/patients/{id}/health-id",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.UpdateHealthID))))
	mux.HandleFunc("POST /api/patients/{id}/vitals",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(ward...)(tenantMiddleware(h.RecordVitals))))
	mux.HandleFunc("GET /api/patients/{id}/vitals",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.ListVitals))))
}

// Register handles POST /api/patients.
func (h *PatientsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var params services.RegisterPatientParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if params.FirstName == "" || params.LastName == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "First and last name are required")
		return
	}

	patient, err := h.patientService.Register(r.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrRegistryConflict) && patient != nil {
			// Local write stands; tell the ward the national id is
			// already claimed elsewhere.
			if err := WriteJSON(w, http.StatusCreated, RegisterPatientResponse{
				Patient:         patient,
				RegistryWarning: "health id is already registered at another centre",
			}); err != nil {
				h.logger.Error("Failed to encode response", zap.Error(err))
			}
			return
		}
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, RegisterPatientResponse{Patient: patient}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// List handles GET /api/patients.
func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patientService.List(r.Context())
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, patients); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Stats handles GET /api/patients/stats.
func (h *PatientsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.patientService.Stats(r.Context())
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, stats); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// SearchGlobal handles GET /api/patients/global/{healthId}.
func (h *PatientsHandler) SearchGlobal(w http.ResponseWriter, r *http.Request) {
	healthID := r.PathValue("healthId")
	if healthID == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "Health id is required")
		return
	}

	patient, err := h.patientService.SearchGlobal(r.Context(), healthID)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, patient); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// UpdateHealthIDRequest carries the edited national health id.
type UpdateHealthIDRequest struct {
	HealthID string `json:"health_id"`
}

// UpdateHealthID handles PUT /api/patients/{id}/health-id.
func (h *PatientsHandler) UpdateHealthID(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid patient id")
		return
	}

	var req UpdateHealthIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.HealthID == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "Health id is required")
		return
	}

	patient, err := h.patientService.UpdateHealthID(r.Context(), patientID, req.HealthID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRegistryConflict) && patient != nil {
			if err := WriteJSON(w, http.StatusOK, RegisterPatientResponse{
				Patient:         patient,
				RegistryWarning: "health id is already registered at another centre",
			}); err != nil {
				h.logger.Error("Failed to encode response", zap.Error(err))
			}
			return
		}
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, RegisterPatientResponse{Patient: patient}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// RecordVitals handles POST /api/patients/{id}/vitals.
func (h *PatientsHandler) RecordVitals(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid patient id")
		return
	}

	var params services.RecordVitalsParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	vitals, err := h.patientService.RecordVitals(r.Context(), patientID, params)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, vitals); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// ListVitals handles GET /api/patients/{id}/vitals.
func (h *PatientsHandler) ListVitals(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid patient id")
		return
	}

	vitals, err := h.patientService.ListVitals(r.Context(), patientID)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, vitals); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *PatientsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
