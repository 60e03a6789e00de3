package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/database"
	"github.com/phc-health/phc-engine/pkg/models"
)

// RegistryRepository is the cross-tenant patient index in the
// management schema. It is the only surface that legitimately crosses
// partition boundaries.
type RegistryRepository interface {
	Create(ctx context.Context, entry *models.RegistryEntry) error
	GetByHealthID(ctx context.Context, healthID string) (*models.RegistryEntry, error)
	UpdateHealthID(ctx context.Context, tenantID, patientID uuid.UUID, newHealthID string) error
}

type registryRepository struct {
	db *database.DB
}

// NewRegistryRepository creates a new registry repository over the
// management pool.
func NewRegistryRepository(db *database.DB) RegistryRepository {
	return &registryRepository{db: db}
}

// Create inserts a registry entry. At most one entry may exist per
// health id system-wide; a duplicate surfaces as ErrRegistryConflict.
func (r *registryRepository) Create(ctx context.Context, entry *models.RegistryEntry) error {
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO patient_registry (health_id, tenant_id, patient_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query,
		entry.HealthID, entry.TenantID, entry.PatientID, entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrRegistryConflict
		}
		return fmt.Errorf("failed to create registry entry: %w", err)
	}
	return nil
}

// GetByHealthID resolves a health id to its owning tenant and local
// patient id.
func (r *registryRepository) GetByHealthID(ctx context.Context, healthID string) (*models.RegistryEntry, error) {
	query := `
		SELECT health_id, tenant_id, patient_id, created_at
		FROM patient_registry
		WHERE health_id = $1`

	var entry models.RegistryEntry
	err := r.db.QueryRow(ctx, query, healthID).Scan(
		&entry.HealthID, &entry.TenantID, &entry.PatientID, &entry.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registry entry: %w", err)
	}
	return &entry, nil
}

// UpdateHealthID repoints a patient's registry entry when the health id
// is edited on the local record.
func (r *registryRepository) UpdateHealthID(ctx context.Context, tenantID, patientID uuid.UUID, newHealthID string) error {
	query := `
		UPDATE patient_registry SET health_id = $3
		WHERE tenant_id = $1 AND patient_id = $2`

	tag, err := r.db.Exec(ctx, query, tenantID, patientID, newHealthID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrRegistryConflict
		}
		return fmt.Errorf("failed to update registry entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
