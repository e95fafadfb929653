package vitals

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(hr, oxygen, systolic int) Reading {
	return Reading{
		HeartRate:              hr,
		OxygenSaturation:       oxygen,
		BloodPressureSystolic:  systolic,
		BloodPressureDiastolic: 80,
		Temperature:            decimal.RequireFromString("98.6"),
		TemperatureUnit:        UnitFahrenheit,
		Timestamp:              time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
}

func TestAssessRiskEmptyHistory(t *testing.T) {
	assert.Nil(t, AssessRisk(nil, time.Now()))
	assert.Nil(t, AssessRisk([]Reading{}, time.Now()))
}

func TestAssessRiskHealthyBaseline(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	got := AssessRisk([]Reading{reading(72, 98, 118)}, now)

	require.NotNil(t, got)
	assert.Equal(t, RiskLow, got.RiskLevel)
	assert.Empty(t, got.RiskFactors)
	assert.Equal(t, []string{fallbackRecommendation}, got.Recommendations)
	assert.Equal(t, now, got.AssessedAt)
}

func TestAssessRiskAbnormalHeartRateOnly(t *testing.T) {
	got := AssessRisk([]Reading{reading(105, 98, 120)}, time.Now())

	require.NotNil(t, got)
	assert.Equal(t, RiskMedium, got.RiskLevel)
	assert.Equal(t, []string{"Abnormal Heart Rate"}, got.RiskFactors)
	require.Len(t, got.Recommendations, 1)
	assert.Contains(t, got.Recommendations[0], "cardiologist")
}

func TestAssessRiskHighTierAndOrdering(t *testing.T) {
	// Mean oxygen 90 (weight 3) plus mean systolic 135 (weight 2) hits the
	// high tier at exactly 5. Factor order follows rule order, not weight.
	got := AssessRisk([]Reading{reading(80, 90, 135)}, time.Now())

	require.NotNil(t, got)
	assert.Equal(t, RiskHigh, got.RiskLevel)
	assert.Equal(t, []string{"Low Oxygen Saturation", "High Blood Pressure"}, got.RiskFactors)
	require.Len(t, got.Recommendations, 2)
	assert.Contains(t, got.Recommendations[0], "respiratory")
	assert.Contains(t, got.Recommendations[1], "sodium")
}

func TestAssessRiskAllFactors(t *testing.T) {
	got := AssessRisk([]Reading{reading(120, 90, 150)}, time.Now())

	require.NotNil(t, got)
	assert.Equal(t, RiskHigh, got.RiskLevel)
	assert.Equal(t, []string{"Abnormal Heart Rate", "Low Oxygen Saturation", "High Blood Pressure"}, got.RiskFactors)
}

func TestAssessRiskFractionalMean(t *testing.T) {
	// 100 and 101 average to 100.5 which must count as above 100.
	got := AssessRisk([]Reading{reading(100, 98, 120), reading(101, 98, 120)}, time.Now())

	require.NotNil(t, got)
	assert.Equal(t, []string{"Abnormal Heart Rate"}, got.RiskFactors)
	assert.Equal(t, RiskMedium, got.RiskLevel)
}

func TestAssessRiskBoundaryMeansAreNormal(t *testing.T) {
	// Means sitting exactly on 60/100/95/130 trigger nothing.
	got := AssessRisk([]Reading{reading(60, 95, 130), reading(100, 95, 130)}, time.Now())

	require.NotNil(t, got)
	assert.Equal(t, RiskLow, got.RiskLevel)
	assert.Empty(t, got.RiskFactors)
}

func TestAssessRiskIdempotent(t *testing.T) {
	readings := []Reading{reading(105, 93, 135), reading(110, 92, 140)}
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := AssessRisk(readings, at)
	second := AssessRisk(readings, at)
	assert.Equal(t, first, second)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Reading{reading(60, 96, 110), reading(90, 100, 130)})

	assert.Equal(t, 2, s.Count)
	assert.True(t, s.MeanHeartRate.Equal(decimal.NewFromInt(75)), "mean hr %s", s.MeanHeartRate)
	assert.True(t, s.MeanOxygen.Equal(decimal.NewFromInt(98)), "mean oxygen %s", s.MeanOxygen)
	assert.True(t, s.MeanSystolic.Equal(decimal.NewFromInt(120)), "mean systolic %s", s.MeanSystolic)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
}
