package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/tenant"
)

// VitalsRepository stores vitals snapshots inside the request's tenant
// partition.
type VitalsRepository interface {
	Create(ctx context.Context, vitals *models.Vitals) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.Vitals, error)
}

type vitalsRepository struct{}

// NewVitalsRepository creates a new vitals repository.
func NewVitalsRepository() VitalsRepository {
	return &vitalsRepository{}
}

// Create inserts a vitals snapshot with its computed risk assessment.
func (r *vitalsRepository) Create(ctx context.Context, vitals *models.Vitals) error {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no tenant scope in context")
	}

	if vitals.ID == uuid.Nil {
		vitals.ID = uuid.New()
	}
	vitals.RecordedAt = time.Now()

	query := `
		INSERT INTO vitals (id, patient_id, temperature, blood_pressure, pulse, spo2, blood_sugar, weight, height, risk_level, triage_note, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := scope.Pool.Exec(ctx, query,
		vitals.ID, vitals.PatientID, vitals.Temperature, vitals.BloodPressure,
		vitals.Pulse, vitals.SpO2, vitals.BloodSugar, vitals.Weight, vitals.Height,
		vitals.RiskLevel, vitals.TriageNote, vitals.RecordedBy, vitals.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vitals: %w", err)
	}
	return nil
}

// ListByPatient returns a patient's vitals history, newest first.
func (r *vitalsRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]models.Vitals, error) {
	scope, ok := tenant.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no tenant scope in context")
	}

	query := `
		SELECT id, patient_id, temperature, blood_pressure, pulse, spo2, blood_sugar, weight, height, risk_level, triage_note, recorded_by, recorded_at
		FROM vitals
		WHERE patient_id = $1
		ORDER BY recorded_at DESC`

	rows, err := scope.Pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vitals: %w", err)
	}
	defer rows.Close()

	var results []models.Vitals
	for rows.Next() {
		var v models.Vitals
		if err := rows.Scan(
			&v.ID, &v.PatientID, &v.Temperature, &v.BloodPressure, &v.Pulse,
			&v.SpO2, &v.BloodSugar, &v.Weight, &v.Height, &v.RiskLevel,
			&v.TriageNote, &v.RecordedBy, &v.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vitals: %w", err)
		}
		results = append(results, v)
	}
	return results, rows.Err()
}
