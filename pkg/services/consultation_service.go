package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phc-health/phc-engine/pkg/auth"
	"github.com/phc-health/phc-engine/pkg/models"
	"github.com/phc-health/phc-engine/pkg/repositories"
)

// ConsultationService manages the OPD consultation workflow.
type ConsultationService struct {
	consultations repositories.ConsultationRepository
	patients      repositories.PatientRepository
	logger        *zap.Logger
}

// NewConsultationService creates a ConsultationService.
func NewConsultationService(
	consultations repositories.ConsultationRepository,
	patients repositories.PatientRepository,
	logger *zap.Logger,
) *ConsultationService {
	return &ConsultationService{
		consultations: consultations,
		patients:      patients,
		logger:        logger,
	}
}

// CreateConsultationParams opens a consultation for a patient. DoctorID
// defaults to the authenticated user when omitted.
type CreateConsultationParams struct {
	PatientID      uuid.UUID  `json:"patient_id"`
	DoctorID       *uuid.UUID `json:"doctor_id,omitempty"`
	ChiefComplaint string     `json:"chief_complaint"`
}

// Create opens a pending consultation.
func (s *ConsultationService) Create(ctx context.Context, params CreateConsultationParams) (*models.Consultation, error) {
	if _, err := s.patients.GetByID(ctx, params.PatientID); err != nil {
		return nil, err
	}

	doctorID := auth.GetUserIDFromContext(ctx)
	if params.DoctorID != nil {
		doctorID = *params.DoctorID
	}

	consultation := &models.Consultation{
		PatientID:      params.PatientID,
		DoctorID:       doctorID,
		ChiefComplaint: params.ChiefComplaint,
		Status:         models.ConsultationPending,
	}
	if err := s.consultations.Create(ctx, consultation); err != nil {
		return nil, err
	}
	return consultation, nil
}

// DiagnosisParams closes out a consultation.
type DiagnosisParams struct {
	Diagnosis    *string `json:"diagnosis,omitempty"`
	Prescription *string `json:"prescription,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// UpdateDiagnosis records the doctor's findings. Writing a diagnosis
// completes the consultation unless the caller says otherwise.
func (s *ConsultationService) UpdateDiagnosis(ctx context.Context, id uuid.UUID, params DiagnosisParams) (*models.Consultation, error) {
	status := models.ConsultationCompleted
	if params.Status != nil {
		status = *params.Status
	}
	return s.consultations.UpdateDiagnosis(ctx, id, params.Diagnosis, params.Prescription, status)
}

// List returns consultations matching the filter.
func (s *ConsultationService) List(ctx context.Context, filter repositories.ConsultationFilter) ([]models.Consultation, error) {
	return s.consultations.List(ctx, filter)
}

// Stats returns the partition's consultation counters.
func (s *ConsultationService) Stats(ctx context.Context) (*models.ConsultationStats, error) {
	return s.consultations.Stats(ctx)
}
