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

// ConsultationFilter narrows consultation listings.
type ConsultationFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
}

// ConsultationRepository stores consultations inside the request's
// tenant partition.
type ConsultationRepository interface {
	Create(ctx context.Context, consultation *models.Consultation) error
	UpdateDiagnosis(ctx context.Context, id uuid.UUID, diagnosis, prescription *string, status string) (*models.Consultation, error)
	List(ctx context.Context, filter ConsultationFilter) ([]models.Consultation, error)
	Stats(ctx context.Context) (*models.ConsultationStats, error)
}

type consultationRepository struct{}

// NewConsultationRepository creates a new consultation repository.
func NewConsultationRepository() ConsultationRepository {
	return &consultationRepository{}
}

const consultationColumns = `id, patient_id, doctor_id, chief_complaint, status, diagnosis, prescription, created_at, updated_at`

// Create inserts a pending consultation.
func (r *consultationRepository) Create(ctx context.Context, consultation *models.Consultation) error {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if consultation.ID == uuid.Nil {
		consultation.ID = uuid.New()
	}
	now := time.Now()
	consultation.CreatedAt = now
	consultation.UpdatedAt = now
	if consultation.Status == "" {
		consultation.Status = models.ConsultationPending
	}

	query := `
		INSERT INTO consultations (id, patient_id, doctor_id, chief_complaint, status, diagnosis, prescription, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := scope.Pool.Exec(ctx, query,
		consultation.ID, consultation.PatientID, consultation.DoctorID,
		consultation.ChiefComplaint, consultation.Status,
		consultation.Diagnosis, consultation.Prescription,
		consultation.CreatedAt, consultation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

// UpdateDiagnosis records the doctor's diagnosis and prescription and
// moves the consultation to the given status.
func (r *consultationRepository) UpdateDiagnosis(ctx context.Context, id uuid.UUID, diagnosis, prescription *string, status string) (*models.Consultation, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		UPDATE consultations
		SET diagnosis = $2, prescription = $3, status = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + consultationColumns

	var c models.Consultation
	err := scope.Pool.QueryRow(ctx, query, id, diagnosis, prescription, status, time.Now()).Scan(
		&c.ID, &c.PatientID, &c.DoctorID, &c.ChiefComplaint, &c.Status,
		&c.Diagnosis, &c.Prescription, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update consultation: %w", err)
	}
	return &c, nil
}

// List returns the partition's consultations, newest first, optionally
// filtered by patient or doctor.
func (r *consultationRepository) List(ctx context.Context, filter ConsultationFilter) ([]models.Consultation, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT ` + consultationColumns + `
		FROM consultations
		WHERE ($1::uuid IS NULL OR patient_id = $1)
		  AND ($2::uuid IS NULL OR doctor_id = $2)
		ORDER BY created_at DESC`

	rows, err := scope.Pool.Query(ctx, query, filter.PatientID, filter.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	defer rows.Close()

	var consultations []models.Consultation
	for rows.Next() {
		var c models.Consultation
		if err := rows.Scan(
			&c.ID, &c.PatientID, &c.DoctorID, &c.ChiefComplaint, &c.Status,
			&c.Diagnosis, &c.Prescription, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan consultation: %w", err)
		}
		consultations = append(consultations, c)
	}
	return consultations, rows.Err()
}

// Stats counts today's consultations and the pending backlog.
func (r *consultationRepository) Stats(ctx context.Context) (*models.ConsultationStats, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT count(*) FILTER (WHERE created_at >= date_trunc('day', now())),
		       count(*) FILTER (WHERE status = $1)
		FROM consultations`

	var stats models.ConsultationStats
	if err := scope.Pool.QueryRow(ctx, query, models.ConsultationPending).Scan(
		&stats.TodayConsultations, &stats.PendingConsultations,
	); err != nil {
		return nil, fmt.Errorf("failed to get consultation stats: %w", err)
	}
	return &stats, nil
}
