package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/repositories"
	"github.com/phc-health/phc-engine/pkg/services"
)

// ConsultationsHandler handles the OPD consultation endpoints.
type ConsultationsHandler struct {
	consultationService *services.ConsultationService
	logger              *zap.Logger
}

// NewConsultationsHandler creates a new consultations handler.
func NewConsultationsHandler(consultationService *services.ConsultationService, logger *zap.Logger) *ConsultationsHandler {
	return &ConsultationsHandler{consultationService: consultationService, logger: logger}
}

// RegisterRoutes registers the consultations handler's routes on the
// given mux. All routes are restricted to the clinical roles; writing
// the diagnosis is the doctor's alone.
func (h *ConsultationsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	clinical := []string{models.RoleDoctor, models.RoleNurse, models.RoleHospitalAdmin}

	mux.HandleFunc("POST /api/consultations",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.Create))))
	mux.HandleFunc("GET /api/consultations",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.List))))
	mux.HandleFunc("GET /api/consultations/stats",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(clinical...)(tenantMiddleware(h.Stats))))
	mux.HandleFunc("PUT /api/consultations/{id}/diagnosis",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(models.RoleDoctor)(tenantMiddleware(h.UpdateDiagnosis))))
}

// Create handles POST /api/consultations.
func (h *ConsultationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params services.CreateConsultationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if params.PatientID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "Patient id is required")
		return
	}

	consultation, err := h.consultationService.Create(r.Context(), params)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, consultation); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// List handles GET /api/consultations. Optional patient_id and
// doctor_id query parameters narrow the result.
func (h *ConsultationsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ConsultationFilter
	if v := r.URL.Query().Get("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid patient_id filter")
			return
		}
		filter.PatientID = &id
	}
	if v := r.URL.Query().Get("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid doctor_id filter")
			return
		}
		filter.DoctorID = &id
	}

	consultations, err := h.consultationService.List(r.Context(), filter)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, consultations); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Stats handles GET /api/consultations/stats.
func (h *ConsultationsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.consultationService.Stats(r.Context())
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, stats); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// UpdateDiagnosis handles PUT /api/consultations/{id}/diagnosis.
func (h *ConsultationsHandler) UpdateDiagnosis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid consultation id")
		return
	}

	var params services.DiagnosisParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	consultation, err := h.consultationService.UpdateDiagnosis(r.Context(), id, params)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, consultation); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *ConsultationsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
