package models

import (
	"time"

	"github.com/google/uuid"
)

// Vitals is a recorded vitals snapshot. Every field a nurse might skip
// is a pointer; absent fields are simply not evaluated by triage.
// RiskLevel and TriageNote are computed at record time and stored with
// the snapshot.
type Vitals struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patient_id"`
	Temperature   *float64  `json:"temperature,omitempty"`
	BloodPressure *string   `json:"blood_pressure,omitempty"`
	Pulse         *int      `json:"pulse,omitempty"`
	SpO2          *float64  `json:"spo2,omitempty"`
	BloodSugar    *float64  `json:"blood_sugar,omitempty"`
	Weight        *float64  `json:"weight,omitempty"`
	Height        *float64  `json:"height,omitempty"`
	RiskLevel     string    `json:"risk_level"`
	TriageNote    string    `json:"triage_note"`
	RecordedBy    uuid.UUID `json:"recorded_by"`
	RecordedAt    time.Time `json:"recorded_at"`
}
