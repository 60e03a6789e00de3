package models

import (
	"time"

	"github.com/google/uuid"
)

// Consultation statuses.
const (
	ConsultationPending   = "PENDING"
	ConsultationCompleted = "COMPLETED"
)

// Consultation is a visit inside one tenant's partition.
type Consultation struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	ChiefComplaint string    `json:"chief_complaint"`
	Status         string    `json:"status"`
	Diagnosis      *string   `json:"diagnosis,omitempty"`
	Prescription   *string   `json:"prescription,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConsultationStats summarizes a centre's consultation load.
type ConsultationStats struct {
	TodayConsultations   int `json:"today_consultations"`
	PendingConsultations int `json:"pending_consultations"`
}
