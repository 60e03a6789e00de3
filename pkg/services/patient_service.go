package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/apperrors"
	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/repositories"
	"github.com/phc-health/phc-engine/pkg/tenant"
	"github.com/phc-health/phc-engine/pkg/triage"
)

// PatientService handles patient registration, the cross-tenant
// registry write-through, global search, and vitals recording.
type PatientService struct {
	patients repositories.PatientRepository
	vitals   repositories.VitalsRepository
	registry repositories.RegistryRepository
	tenants  repositories.TenantRepository
	router   *tenant.Router
	logger   *zap.Logger
}

// NewPatientService creates a PatientService.
func NewPatientService(
	patients repositories.PatientRepository,
	vitals repositories.VitalsRepository,
	registry repositories.RegistryRepository,
	tenants repositories.TenantRepository,
	router *tenant.Router,
	logger *zap.Logger,
) *PatientService {
	return &PatientService{
		patients: patients,
		vitals:   vitals,
		registry: registry,
		tenants:  tenants,
		router:   router,
		logger:   logger,
	}
}

// RegisterPatientParams describes a new patient record.
type RegisterPatientParams struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	HealthID    *string   `json:"health_id,omitempty"`
}

// Register creates the patient in the request's partition, then writes
// through to the cross-tenant registry when a health id is present.
// Local clinical data is authoritative: a duplicate health id surfaces
// as ErrRegistryConflict with the local record kept, and any other
// registry failure is logged, not fatal, so a central outage never
// blocks local care.
func (s *PatientService) Register(ctx context.Context, params RegisterPatientParams) (*models.Patient, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	tenantID, ok := claims.TenantUUID()
	if !ok && !claims.Elevated() {
		return nil, apperrors.ErrNoTenant
	}

	if params.HealthID != nil {
		if _, err := s.patients.FindByHealthID(ctx, *params.HealthID); err == nil {
			return nil, fmt.Errorf("%w: patient with this health id already exists in this centre", apperrors.ErrConflict)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	patient := &models.Patient{
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		DateOfBirth: params.DateOfBirth,
		Gender:      params.Gender,
		Phone:       params.Phone,
		Address:     params.Address,
		HealthID:    params.HealthID,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}

	if params.HealthID != nil && tenantID != uuid.Nil {
		entry := &models.RegistryEntry{
			HealthID:  *params.HealthID,
			TenantID:  tenantID,
			PatientID: patient.ID,
		}
		if err := s.registry.Create(ctx, entry); err != nil {
			if errors.Is(err, apperrors.ErrRegistryConflict) {
				// The local record stands; the id is already claimed
				// by another centre.
				return patient, apperrors.ErrRegistryConflict
			}
			s.logger.Warn("failed to sync patient to global registry",
				zap.String("patient_id", patient.ID.String()),
				zap.Error(err))
		}
	}

	return patient, nil
}

// UpdateHealthID edits a patient's national health id and repoints the
// registry entry, creating one when the patient had no id before. The
// same write-through rules as Register apply: the local edit is
// authoritative, a duplicate id elsewhere surfaces as
// ErrRegistryConflict with the local edit kept, and other registry
// failures are logged only.
func (s *PatientService) UpdateHealthID(ctx context.Context, patientID uuid.UUID, healthID string) (*models.Patient, error) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	tenantID, ok := claims.TenantUUID()
	if !ok && !claims.Elevated() {
		return nil, apperrors.ErrNoTenant
	}

	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.patients.FindByHealthID(ctx, healthID); err == nil {
		if existing.ID == patientID {
			return patient, nil
		}
		return nil, fmt.Errorf("%w: another patient in this centre holds this health id", apperrors.ErrConflict)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hadHealthID := patient.HealthID != nil && *patient.HealthID != ""
	if err := s.patients.UpdateHealthID(ctx, patientID, healthID); err != nil {
		return nil, err
	}
	patient.HealthID = &healthID

	if tenantID != uuid.Nil {
		var regErr error
		if hadHealthID {
			regErr = s.registry.UpdateHealthID(ctx, tenantID, patientID, healthID)
		}
		if !hadHealthID || errors.Is(regErr, apperrors.ErrNotFound) {
			// First health id for this record, or the entry never made
			// it to the registry; create it now.
			regErr = s.registry.Create(ctx, &models.RegistryEntry{
				HealthID:  healthID,
				TenantID:  tenantID,
				PatientID: patientID,
			})
		}
		if regErr != nil {
			if errors.Is(regErr, apperrors.ErrRegistryConflict) {
				return patient, apperrors.ErrRegistryConflict
			}
			s.logger.Warn("failed to sync health id edit to global registry",
				zap.String("patient_id", patientID.String()),
				zap.Error(regErr))
		}
	}

	return patient, nil
}

// SearchGlobal resolves a health id through the registry and fetches
// the record from its home partition, whichever centre that is.
func (s *PatientService) SearchGlobal(ctx context.Context, healthID string) (*models.GlobalPatient, error) {
	entry, err := s.registry.GetByHealthID(ctx, healthID)
	if err != nil {
		return nil, err
	}

	home, err := s.tenants.GetByID(ctx, entry.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home centre: %w", err)
	}

	// Directory data still goes through the slug gate before it names
	// a connection target.
	slug, err := tenant.ParseSlug(home.Slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidTenantSlug, err)
	}

	pool, err := s.router.Resolve(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to reach home centre %s: %w", slug, err)
	}

	homeCtx := tenant.SetScope(ctx, &tenant.Scope{Slug: slug, Pool: pool})
	patient, err := s.patients.GetByID(homeCtx, entry.PatientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: record missing in home centre", apperrors.ErrNotFound)
		}
		return nil, err
	}

	return &models.GlobalPatient{
		Patient:      *patient,
		HomePHC:      home.Name,
		HomeTenant:   home.ID,
		HomeSlug:     home.Slug,
		RegisteredAt: entry.CreatedAt,
	}, nil
}

// List returns the partition's patients.
func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	return s.patients.List(ctx)
}

// Stats returns the partition's patient counters.
func (s *PatientService) Stats(ctx context.Context) (*models.PatientStats, error) {
	return s.patients.Stats(ctx)
}

// RecordVitalsParams is a raw vitals snapshot from the ward.
type RecordVitalsParams struct {
	Temperature   *float64 `json:"temperature,omitempty"`
	BloodPressure *string  `json:"blood_pressure,omitempty"`
	Pulse         *int     `json:"pulse,omitempty"`
	SpO2          *float64 `json:"spo2,omitempty"`
	BloodSugar    *float64 `json:"blood_sugar,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
}

// RecordVitals classifies the snapshot and persists it with the
// resulting risk level and triage note.
func (s *PatientService) RecordVitals(ctx context.Context, patientID uuid.UUID, params RecordVitalsParams) (*models.Vitals, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	assessment := triage.Classify(triage.VitalsInput{
		BloodPressure: params.BloodPressure,
		Temperature:   params.Temperature,
		SpO2:          params.SpO2,
		BloodSugar:    params.BloodSugar,
		Pulse:         params.Pulse,
	})

	vitals := &models.Vitals{
		PatientID:     patientID,
		Temperature:   params.Temperature,
		BloodPressure: params.BloodPressure,
		Pulse:         params.Pulse,
		SpO2:          params.SpO2,
		BloodSugar:    params.BloodSugar,
		Weight:        params.Weight,
		Height:        params.Height,
		RiskLevel:     assessment.Level.String(),
		TriageNote:    assessment.Note(),
		RecordedBy:    auth.GetUserIDFromContext(ctx),
	}
	if err := s.vitals.Create(ctx, vitals); err != nil {
		return nil, err
	}

	if assessment.Level >= triage.High {
		s.logger.Warn("high-risk vitals recorded",
			zap.String("patient_id", patientID.String()),
			zap.String("risk_level", vitals.RiskLevel),
			zap.String("triage_note", vitals.TriageNote))
	}

	return vitals, nil
}

// ListVitals returns a patient's vitals history.
func (s *PatientService) ListVitals(ctx context.Context, patientID uuid.UUID) ([]models.Vitals, error) {
	return s.vitals.ListByPatient(ctx, patientID)
}
