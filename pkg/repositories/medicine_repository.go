package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/tenant"
)

// MedicineRepository stores pharmacy inventory inside the request's
// tenant partition.
type MedicineRepository interface {
	CreateMedicine(ctx context.Context, medicine *models.Medicine) error
	FindMedicineByName(ctx context.Context, name string) (*models.Medicine, error)
	CreateBatch(ctx context.Context, batch *models.Batch) error
	ListInventory(ctx context.Context) ([]models.MedicineInventory, error)
}

type medicineRepository struct{}

// NewMedicineRepository creates a new medicine repository.
func NewMedicineRepository() MedicineRepository {
	return &medicineRepository{}
}

// CreateMedicine inserts a new medicine.
func (r *medicineRepository) CreateMedicine(ctx context.Context, medicine *models.Medicine) error {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if medicine.ID == uuid.Nil {
		medicine.ID = uuid.New()
	}
	medicine.CreatedAt = time.Now()
	if medicine.LowStockThreshold <= 0 {
		medicine.LowStockThreshold = 10
	}

	query := `
		INSERT INTO medicines (id, name, manufacturer, unit, low_stock_threshold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := scope.Pool.Exec(ctx, query,
		medicine.ID, medicine.Name, medicine.Manufacturer, medicine.Unit,
		medicine.LowStockThreshold, medicine.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create medicine: %w", err)
	}
	return nil
}

// FindMedicineByName retrieves a medicine by case-insensitive name.
func (r *medicineRepository) FindMedicineByName(ctx context.Context, name string) (*models.Medicine, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, name, manufacturer, unit, low_stock_threshold, created_at
		FROM medicines
		WHERE lower(name) = lower($1)`

	var m models.Medicine
	err := scope.Pool.QueryRow(ctx, query, name).Scan(
		&m.ID, &m.Name, &m.Manufacturer, &m.Unit, &m.LowStockThreshold, &m.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}
	return &m, nil
}

// CreateBatch inserts a stock lot for an existing medicine.
func (r *medicineRepository) CreateBatch(ctx context.Context, batch *models.Batch) error {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	batch.CreatedAt = time.Now()

	query := `
		INSERT INTO medicine_batches (id, medicine_id, batch_number, expiry_date, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := scope.Pool.Exec(ctx, query,
		batch.ID, batch.MedicineID, batch.BatchNumber, batch.ExpiryDate,
		batch.Quantity, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// ListInventory returns every medicine with its non-empty batches
// ordered by expiry, name-ordered overall. Stock totals are computed by
// the caller via ComputeStock.
func (r *medicineRepository) ListInventory(ctx context.Context) ([]models.MedicineInventory, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT m.id, m.name, m.manufacturer, m.unit, m.low_stock_threshold, m.created_at,
		       b.id, b.medicine_id, b.batch_number, b.expiry_date, b.quantity, b.created_at
		FROM medicines m
		LEFT JOIN medicine_batches b ON b.medicine_id = m.id AND b.quantity > 0
		ORDER BY m.name ASC, b.expiry_date ASC`

	rows, err := scope.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var inventory []models.MedicineInventory
	index := make(map[uuid.UUID]int)

	for rows.Next() {
		var m models.Medicine
		var batchID, batchMedicineID *uuid.UUID
		var batchNumber *string
		var expiryDate, batchCreatedAt *time.Time
		var quantity *int

		if err := rows.Scan(
			&m.ID, &m.Name, &m.Manufacturer, &m.Unit, &m.LowStockThreshold, &m.CreatedAt,
			&batchID, &batchMedicineID, &batchNumber, &expiryDate, &quantity, &batchCreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}

		i, seen := index[m.ID]
		if !seen {
			inventory = append(inventory, models.MedicineInventory{Medicine: m})
			i = len(inventory) - 1
			index[m.ID] = i
		}

		if batchID != nil {
			inventory[i].Batches = append(inventory[i].Batches, models.Batch{
				ID:          *batchID,
				MedicineID:  *batchMedicineID,
				BatchNumber: *batchNumber,
				ExpiryDate:  *expiryDate,
				Quantity:    *quantity,
				CreatedAt:   *batchCreatedAt,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range inventory {
		inventory[i].ComputeStock()
	}
	return inventory, nil
}
