package insights

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthchain/internal/vitals"
)

func readingsWithHeartRates(rates ...int) []vitals.Reading {
	out := make([]vitals.Reading, 0, len(rates))
	for _, hr := range rates {
		out = append(out, vitals.Reading{HeartRate: hr, OxygenSaturation: 98, BloodPressureSystolic: 120})
	}
	return out
}

func TestTrendOfStableWithinBand(t *testing.T) {
	// 100 -> 101 is a 1% change, inside the 2% stable band.
	trend := TrendOf(MetricHeartRate, readingsWithHeartRates(100, 101))
	assert.Equal(t, DirectionStable, trend.Direction)
}

func TestTrendOfUpAndDown(t *testing.T) {
	up := TrendOf(MetricHeartRate, readingsWithHeartRates(80, 80, 90, 90))
	assert.Equal(t, DirectionUp, up.Direction)
	assert.True(t, up.ChangePct.Equal(decimal.NewFromFloat(12.5)), "change %s", up.ChangePct)

	down := TrendOf(MetricHeartRate, readingsWithHeartRates(90, 90, 80, 80))
	assert.Equal(t, DirectionDown, down.Direction)
	assert.True(t, down.ChangePct.Sign() < 0)
}

func TestTrendOfShortHistory(t *testing.T) {
	assert.Equal(t, DirectionStable, TrendOf(MetricHeartRate, nil).Direction)
	assert.Equal(t, DirectionStable, TrendOf(MetricHeartRate, readingsWithHeartRates(80)).Direction)
}

func TestTrendsCoversAllMetrics(t *testing.T) {
	trends := Trends(readingsWithHeartRates(80, 90))
	require.Len(t, trends, 3)
	assert.Equal(t, MetricHeartRate, trends[0].Metric)
	assert.Equal(t, MetricOxygen, trends[1].Metric)
	assert.Equal(t, MetricSystolic, trends[2].Metric)
}

func TestForSummaryHealthy(t *testing.T) {
	s := vitals.Summarize(readingsWithHeartRates(72, 76))
	got := ForSummary(s)

	require.Len(t, got, 3)
	for _, insight := range got {
		assert.Equal(t, KindPositive, insight.Kind, insight.Title)
	}
}

func TestForSummaryWarnings(t *testing.T) {
	s := vitals.Summarize([]vitals.Reading{
		{HeartRate: 110, OxygenSaturation: 92, BloodPressureSystolic: 140},
	})
	got := ForSummary(s)

	require.Len(t, got, 3)
	assert.Equal(t, KindWarning, got[0].Kind)
	assert.Contains(t, got[0].Description, "elevated")
	assert.Equal(t, KindWarning, got[1].Kind)
	assert.Equal(t, KindWarning, got[2].Kind)
}

func TestForSummaryEmpty(t *testing.T) {
	assert.Nil(t, ForSummary(vitals.Summary{}))
}
