package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestClassify_NormalVitals(t *testing.T) {
	result := Classify(VitalsInput{
		BloodPressure: strPtr("120/80"),
		Temperature:   floatPtr(98.6),
		SpO2:          floatPtr(98),
		BloodSugar:    floatPtr(100),
		Pulse:         intPtr(72),
	})

	assert.Equal(t, Low, result.Level)
	assert.Empty(t, result.Notes)
	assert.Equal(t, "Normal Vitals", result.Note())
}

func TestClassify_EmptyInput(t *testing.T) {
	result := Classify(VitalsInput{})

	assert.Equal(t, Low, result.Level)
	assert.Equal(t, "Normal Vitals", result.Note())
}

func TestClassify_BloodPressure(t *testing.T) {
	tests := []struct {
		name    string
		reading string
		level   RiskLevel
		note    string
	}{
		{"critical systolic", "160/85", Critical, "Critical BP"},
		{"critical diastolic", "150/100", Critical, "Critical BP"},
		{"high systolic", "140/85", High, "High BP"},
		{"high diastolic", "130/90", High, "High BP"},
		{"just below high", "139/89", Low, "Normal Vitals"},
		{"normal", "118/76", Low, "Normal Vitals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(VitalsInput{BloodPressure: strPtr(tt.reading)})
			assert.Equal(t, tt.level, result.Level)
			assert.Equal(t, tt.note, result.Note())
		})
	}
}

func TestClassify_MalformedBloodPressureIsSkipped(t *testing.T) {
	for _, reading := range []string{"", "120", "abc/def", "120/", "/80"} {
		result := Classify(VitalsInput{BloodPressure: strPtr(reading)})
		assert.Equal(t, Low, result.Level, "reading %q should be skipped", reading)
		assert.Empty(t, result.Notes)
	}
}

func TestClassify_SpO2(t *testing.T) {
	tests := []struct {
		name  string
		spo2  float64
		level RiskLevel
		note  string
	}{
		{"critical hypoxia", 89, Critical, "Critical Hypoxia"},
		{"boundary stays moderate", 90, Moderate, "Low SPO2"},
		{"low", 94, Moderate, "Low SPO2"},
		{"boundary normal", 95, Low, "Normal Vitals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(VitalsInput{SpO2: floatPtr(tt.spo2)})
			assert.Equal(t, tt.level, result.Level)
			assert.Equal(t, tt.note, result.Note())
		})
	}
}

func TestClassify_Temperature(t *testing.T) {
	tests := []struct {
		name  string
		temp  float64
		level RiskLevel
		note  string
	}{
		{"high fever", 103.1, Critical, "High Fever"},
		{"boundary stays moderate", 103, Moderate, "Fever"},
		{"fever", 101, Moderate, "Fever"},
		{"boundary normal", 100.4, Low, "Normal Vitals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(VitalsInput{Temperature: floatPtr(tt.temp)})
			assert.Equal(t, tt.level, result.Level)
			assert.Equal(t, tt.note, result.Note())
		})
	}
}

func TestClassify_BloodSugar(t *testing.T) {
	tests := []struct {
		name  string
		sugar float64
		level RiskLevel
		note  string
	}{
		{"critical hyperglycemia", 201, Critical, "Critical Hyperglycemia"},
		{"boundary stays high", 200, High, "High Blood Sugar"},
		{"high", 141, High, "High Blood Sugar"},
		{"hypoglycemia", 69, Critical, "Hypoglycemia"},
		{"boundary normal low", 70, Low, "Normal Vitals"},
		{"normal", 100, Low, "Normal Vitals"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(VitalsInput{BloodSugar: floatPtr(tt.sugar)})
			assert.Equal(t, tt.level, result.Level)
			assert.Equal(t, tt.note, result.Note())
		})
	}
}

func TestClassify_LowerSignsNeverDowngrade(t *testing.T) {
	// Critical hypoxia followed by a moderate fever must stay critical,
	// with both conditions reported in evaluation order.
	result := Classify(VitalsInput{
		SpO2:        floatPtr(85),
		Temperature: floatPtr(101),
	})

	assert.Equal(t, Critical, result.Level)
	assert.Equal(t, []string{"Critical Hypoxia", "Fever"}, result.Notes)
	assert.Equal(t, "Critical Hypoxia, Fever", result.Note())
}

func TestClassify_CriticalBPWithLowSpO2(t *testing.T) {
	result := Classify(VitalsInput{
		BloodPressure: strPtr("165/95"),
		SpO2:          floatPtr(92),
	})

	assert.Equal(t, Critical, result.Level)
	assert.Equal(t, []string{"Critical BP", "Low SPO2"}, result.Notes)
}

func TestClassify_ElevatedButBelowThresholds(t *testing.T) {
	// 130 < 140 and 85 < 90, so no BP note fires.
	result := Classify(VitalsInput{BloodPressure: strPtr("130/85")})

	assert.Equal(t, Low, result.Level)
	assert.Equal(t, "Normal Vitals", result.Note())
}

func TestClassify_NotesFollowEvaluationOrder(t *testing.T) {
	result := Classify(VitalsInput{
		BloodPressure: strPtr("145/92"),
		SpO2:          floatPtr(93),
		Temperature:   floatPtr(104),
		BloodSugar:    floatPtr(250),
	})

	assert.Equal(t, Critical, result.Level)
	assert.Equal(t, []string{"High BP", "Low SPO2", "High Fever", "Critical Hyperglycemia"}, result.Notes)
}

func TestRiskLevel_String(t *testing.T) {
	assert.Equal(t, "LOW", Low.String())
	assert.Equal(t, "MODERATE", Moderate.String())
	assert.Equal(t, "HIGH", High.String())
	assert.Equal(t, "CRITICAL", Critical.String())
}

func TestRiskLevel_Ordering(t *testing.T) {
	assert.True(t, Low < Moderate)
	assert.True(t, Moderate < High)
	assert.True(t, High < Critical)
}
