package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/repositories"
)

// PharmacyService manages the medicine catalog and batch stock.
type PharmacyService struct {
	medicines repositories.MedicineRepository
	logger    *zap.Logger
}

// NewPharmacyService creates a PharmacyService.
func NewPharmacyService(medicines repositories.MedicineRepository, logger *zap.Logger) *PharmacyService {
	return &PharmacyService{medicines: medicines, logger: logger}
}

// AddMedicineParams describes a catalog entry.
type AddMedicineParams struct {
	Name              string `json:"name"`
	Manufacturer      string `json:"manufacturer"`
	Unit              string `json:"unit"`
	LowStockThreshold *int   `json:"low_stock_threshold,omitempty"`
}

// AddMedicine creates a catalog entry. Names are unique per centre,
// compared case-insensitively.
func (s *PharmacyService) AddMedicine(ctx context.Context, params AddMedicineParams) (*models.Medicine, error) {
	if _, err := s.medicines.FindMedicineByName(ctx, params.Name); err == nil {
		return nil, fmt.Errorf("%w: medicine %q already in catalog", apperrors.ErrConflict, params.Name)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	medicine := &models.Medicine{
		Name:         params.Name,
		Manufacturer: params.Manufacturer,
		Unit:         params.Unit,
	}
	if params.LowStockThreshold != nil {
		medicine.LowStockThreshold = *params.LowStockThreshold
	}
	if err := s.medicines.CreateMedicine(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// AddBatchParams describes an incoming stock batch.
type AddBatchParams struct {
	MedicineID  uuid.UUID `json:"medicine_id"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
}

// AddBatch records received stock against a medicine.
func (s *PharmacyService) AddBatch(ctx context.Context, params AddBatchParams) (*models.Batch, error) {
	batch := &models.Batch{
		MedicineID:  params.MedicineID,
		BatchNumber: params.BatchNumber,
		Quantity:    params.Quantity,
		ExpiryDate:  params.ExpiryDate,
	}
	if err := s.medicines.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Inventory returns the full catalog with per-medicine stock status.
func (s *PharmacyService) Inventory(ctx context.Context) ([]models.MedicineInventory, error) {
	return s.medicines.ListInventory(ctx)
}

// LowStock returns catalog entries at or below their reorder threshold,
// out-of-stock entries included.
func (s *PharmacyService) LowStock(ctx context.Context) ([]models.MedicineInventory, error) {
	inventory, err := s.medicines.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]models.MedicineInventory, 0)
	for _, item := range inventory {
		if item.TotalStock <= item.Medicine.LowStockThreshold {
			low = append(low, item)
		}
	}
	return low, nil
}
