package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/services"
)

// PharmacyHandler handles the medicine catalog and stock endpoints.
type PharmacyHandler struct {
	pharmacyService *services.PharmacyService
	logger          *zap.Logger
}

// NewPharmacyHandler creates a new pharmacy handler.
func NewPharmacyHandler(pharmacyService *services.PharmacyService, logger *zap.Logger) *PharmacyHandler {
	return &PharmacyHandler{pharmacyService: pharmacyService, logger: logger}
}

// RegisterRoutes registers the pharmacy handler's routes on the given
// mux. Catalog writes are for the pharmacist and centre admin; doctors
// can read the inventory while prescribing.
func (h *PharmacyHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware, tenantMiddleware TenantMiddleware) {
	stockKeepers := []string{models.RoleHospitalAdmin, models.RolePharmacist}
	readers := []string{models.RoleHospitalAdmin, models.RolePharmacist, models.RoleDoctor}

	mux.HandleFunc("POST /api/pharmacy/medicines",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(stockKeepers...)(tenantMiddleware(h.AddMedicine))))
	mux.HandleFunc("POST /api/pharmacy/batches",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(stockKeepers...)(tenantMiddleware(h.AddBatch))))
	mux.HandleFunc("GET /api/pharmacy/inventory",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(readers...)(tenantMiddleware(h.Inventory))))
	mux.HandleFunc("GET /api/pharmacy/low-stock",
		authMiddleware.RequireAuth(
			authMiddleware.RequireRoles(stockKeepers...)(tenantMiddleware(h.LowStock))))
}

// AddMedicine handles POST /api/pharmacy/medicines.
func (h *PharmacyHandler) AddMedicine(w http.ResponseWriter, r *http.Request) {
	var params services.AddMedicineParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if params.Name == "" {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "Medicine name is required")
		return
	}

	medicine, err := h.pharmacyService.AddMedicine(r.Context(), params)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, medicine); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// AddBatch handles POST /api/pharmacy/batches.
func (h *PharmacyHandler) AddBatch(w http.ResponseWriter, r *http.Request) {
	var params services.AddBatchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if params.MedicineID == uuid.Nil || params.Quantity <= 0 {
		h.writeError(w, http.StatusBadRequest, "missing_parameters", "Medicine id and a positive quantity are required")
		return
	}

	batch, err := h.pharmacyService.AddBatch(r.Context(), params)
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, batch); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Inventory handles GET /api/pharmacy/inventory.
func (h *PharmacyHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	inventory, err := h.pharmacyService.Inventory(r.Context())
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, inventory); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// LowStock handles GET /api/pharmacy/low-stock.
func (h *PharmacyHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	low, err := h.pharmacyService.LowStock(r.Context())
	if err != nil {
		status, code, message := serviceStatus(err)
		h.writeError(w, status, code, message)
		return
	}

	if err := WriteJSON(w, http.StatusOK, low); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *PharmacyHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
