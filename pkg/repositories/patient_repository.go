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

// PatientRepository defines patient access inside the request's tenant
// partition. All methods read the partition pool from the tenant scope
// in context; they never build a connection target themselves.
type PatientRepository interface {
	Create(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error)
	FindByHealthID(ctx context.Context, healthID string) (*models.Patient, error)
	UpdateHealthID(ctx context.Context, id uuid.UUID, healthID string) error
	List(ctx context.Context) ([]models.Patient, error)
	Stats(ctx context.Context) (*models.PatientStats, error)
}

type patientRepository struct{}

// NewPatientRepository creates a new patient repository.
func NewPatientRepository() PatientRepository {
	return &patientRepository{}
}

const patientColumns = `id, first_name, last_name, date_of_birth, gender, phone, address, health_id, created_at, updated_at`

func scanPatient(row pgx.Row) (*models.Patient, error) {
	var p models.Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Address, &p.HealthID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}
	return &p, nil
}

// Create inserts a new patient into the tenant partition.
func (r *patientRepository) Create(ctx context.Context, patient *models.Patient) error {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	now := time.Now()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	query := `
		INSERT INTO patients (id, first_name, last_name, date_of_birth, gender, phone, address, health_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := scope.Pool.Exec(ctx, query,
		patient.ID, patient.FirstName, patient.LastName, patient.DateOfBirth,
		patient.Gender, patient.Phone, patient.Address, patient.HealthID,
		patient.CreatedAt, patient.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// GetByID retrieves a patient by local id.
func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Patient, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return scanPatient(scope.Pool.QueryRow(ctx, query, id))
}

// FindByHealthID retrieves a patient by national health id within this
// partition only.
func (r *patientRepository) FindByHealthID(ctx context.Context, healthID string) (*models.Patient, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `SELECT ` + patientColumns + ` FROM patients WHERE health_id = $1`
	return scanPatient(scope.Pool.QueryRow(ctx, query, healthID))
}

// UpdateHealthID sets a patient's national health id. The id is unique
// within the partition; a duplicate surfaces as ErrConflict.
func (r *patientRepository) UpdateHealthID(ctx context.Context, id uuid.UUID, healthID string) error {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	query := `UPDATE patients SET health_id = $2, updated_at = $3 WHERE id = $1`

	tag, err := scope.Pool.Exec(ctx, query, id, healthID, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to update patient health id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List returns the partition's patients, newest first.
func (r *patientRepository) List(ctx context.Context) ([]models.Patient, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC`
	rows, err := scope.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var p models.Patient
		if err := rows.Scan(
			&p.ID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender,
			&p.Phone, &p.Address, &p.HealthID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// Stats counts the partition's patients, total and registered today.
func (r *patientRepository) Stats(ctx context.Context) (*models.PatientStats, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE created_at >= date_trunc('day', now()))
		FROM patients`

	var stats models.PatientStats
	if err := scope.Pool.QueryRow(ctx, query).Scan(&stats.TotalPatients, &stats.NewPatients); err != nil {
		return nil, fmt.Errorf("failed to get patient stats: %w", err)
	}
	return &stats, nil
}
