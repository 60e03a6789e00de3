// Package triage maps a vitals snapshot to a clinical risk level.
// Classification is pure and total: absent fields are not evaluated,
// malformed readings are skipped, and no input ever produces an error.
package triage

import (
	"strconv"
	"strings"
)

// RiskLevel is a totally ordered severity: LOW < MODERATE < HIGH < CRITICAL.
type RiskLevel int

const (
	Low RiskLevel = iota
	Moderate
	High
	Critical
)

// String returns the wire form of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Moderate:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// VitalsInput is a snapshot to classify. Each field is independently
// optional; nil fields propose nothing.
type VitalsInput struct {
	BloodPressure *string  // "120/80"-style systolic/diastolic reading
	Temperature   *float64 // Fahrenheit
	SpO2          *float64 // percentage
	BloodSugar    *float64 // mg/dL
	Pulse         *int     // recorded but not classified
}

// RiskAssessment is the classification result. Notes lists every
// triggered condition in evaluation order, not just the maximal one.
type RiskAssessment struct {
	Level RiskLevel
	Notes []string
}

// Note joins the triggered-condition notes, or "Normal Vitals" when
// nothing fired.
func (a RiskAssessment) Note() string {
	if len(a.Notes) == 0 {
		return "Normal Vitals"
	}
	return strings.Join(a.Notes, ", ")
}

// Classify evaluates each vital sign independently and returns the
// maximum proposed level. A sign can only raise the running result,
// never lower it, regardless of evaluation order.
func Classify(vitals VitalsInput) RiskAssessment {
	level := Low
	var notes []string

	upgrade := func(proposed RiskLevel, note string) {
		if proposed > level {
			level = proposed
		}
		notes = append(notes, note)
	}

	if vitals.BloodPressure != nil {
		if systolic, diastolic, ok := parseBloodPressure(*vitals.BloodPressure); ok {
			switch {
			case systolic >= 160 || diastolic >= 100:
				upgrade(Critical, "Critical BP")
			case systolic >= 140 || diastolic >= 90:
				upgrade(High, "High BP")
			}
		}
	}

	if vitals.SpO2 != nil {
		switch {
		case *vitals.SpO2 < 90:
			upgrade(Critical, "Critical Hypoxia")
		case *vitals.SpO2 < 95:
			upgrade(Moderate, "Low SPO2")
		}
	}

	if vitals.Temperature != nil {
		switch {
		case *vitals.Temperature > 103:
			upgrade(Critical, "High Fever")
		case *vitals.Temperature > 100.4:
			upgrade(Moderate, "Fever")
		}
	}

	if vitals.BloodSugar != nil {
		switch {
		case *vitals.BloodSugar > 200:
			upgrade(Critical, "Critical Hyperglycemia")
		case *vitals.BloodSugar > 140:
			upgrade(High, "High Blood Sugar")
		case *vitals.BloodSugar < 70:
			upgrade(Critical, "Hypoglycemia")
		}
	}

	return RiskAssessment{Level: level, Notes: notes}
}

// parseBloodPressure splits a "systolic/diastolic" reading.
func parseBloodPressure(reading string) (systolic, diastolic float64, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(reading), "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}

	systolic, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	diastolic, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}

	return systolic, diastolic, true
}
