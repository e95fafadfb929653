// Package insights derives display-ready summaries from a reading history:
// per-metric trend directions and threshold-keyed insight text. Everything
// here is pure and recomputed on demand; nothing is persisted.
package insights

import (
	"github.com/shopspring/decimal"

	"healthchain/internal/vitals"
)

// Direction labels how a metric is moving.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// Metric identifies a trended vital.
type Metric string

const (
	MetricHeartRate Metric = "heart_rate"
	MetricOxygen    Metric = "oxygen_saturation"
	MetricSystolic  Metric = "blood_pressure_systolic"
)

// Trend summarises the movement of one metric between the older and the
// more recent half of the history.
type Trend struct {
	Metric    Metric
	Direction Direction
	ChangePct decimal.Decimal
}

// Changes below this magnitude (percent) count as stable.
var stableBandPct = decimal.NewFromInt(2)

var hundred = decimal.NewFromInt(100)

// TrendOf computes the trend of one metric over readings ordered oldest
// first. Fewer than two readings, or an all-zero older half, is stable.
func TrendOf(metric Metric, readings []vitals.Reading) Trend {
	trend := Trend{Metric: metric, Direction: DirectionStable, ChangePct: decimal.Zero}
	if len(readings) < 2 {
		return trend
	}

	half := len(readings) / 2
	older := mean(metric, readings[:half])
	recent := mean(metric, readings[half:])
	if older.IsZero() {
		return trend
	}

	change := recent.Sub(older).Div(older).Mul(hundred)
	trend.ChangePct = change

	if change.Abs().LessThan(stableBandPct) {
		return trend
	}
	if change.Sign() > 0 {
		trend.Direction = DirectionUp
	} else {
		trend.Direction = DirectionDown
	}
	return trend
}

// Trends computes trends for all tracked metrics.
func Trends(readings []vitals.Reading) []Trend {
	return []Trend{
		TrendOf(MetricHeartRate, readings),
		TrendOf(MetricOxygen, readings),
		TrendOf(MetricSystolic, readings),
	}
}

func mean(metric Metric, readings []vitals.Reading) decimal.Decimal {
	if len(readings) == 0 {
		return decimal.Zero
	}
	var sum decimal.Decimal
	for _, r := range readings {
		sum = sum.Add(decimal.NewFromInt(int64(metricValue(metric, r))))
	}
	return sum.Div(decimal.NewFromInt(int64(len(readings))))
}

func metricValue(metric Metric, r vitals.Reading) int {
	switch metric {
	case MetricHeartRate:
		return r.HeartRate
	case MetricOxygen:
		return r.OxygenSaturation
	case MetricSystolic:
		return r.BloodPressureSystolic
	default:
		return 0
	}
}

// Kind marks the tone of an insight.
type Kind string

const (
	KindPositive Kind = "positive"
	KindWarning  Kind = "warning"
)

// Insight is one piece of display copy keyed off summary thresholds.
type Insight struct {
	Title       string
	Category    string
	Kind        Kind
	Description string
}

// ForSummary picks insight copy for the summary averages using the same
// thresholds the risk scorer applies.
func ForSummary(s vitals.Summary) []Insight {
	if s.Count == 0 {
		return nil
	}

	out := make([]Insight, 0, 3)

	heart := Insight{Title: "Heart Health", Category: "Cardiovascular", Kind: KindPositive,
		Description: "Your heart rate is within normal range. Keep up the healthy lifestyle!"}
	if s.MeanHeartRate.LessThan(decimal.NewFromInt(60)) {
		heart.Kind = KindWarning
		heart.Description = "Your heart rate is on the lower side. Monitor for any symptoms."
	} else if s.MeanHeartRate.GreaterThan(decimal.NewFromInt(100)) {
		heart.Kind = KindWarning
		heart.Description = "Your heart rate is elevated. Consider stress management techniques."
	}
	out = append(out, heart)

	oxygen := Insight{Title: "Oxygen Saturation", Category: "Respiratory", Kind: KindPositive,
		Description: "Your oxygen saturation is healthy. Continue monitoring regularly."}
	if s.MeanOxygen.LessThan(decimal.NewFromInt(95)) {
		oxygen.Kind = KindWarning
		oxygen.Description = "Your oxygen levels are low. Consult with a healthcare provider."
	}
	out = append(out, oxygen)

	pressure := Insight{Title: "Blood Pressure", Category: "Cardiovascular", Kind: KindPositive,
		Description: "Your blood pressure is in a healthy range. Continue regular monitoring."}
	if s.MeanSystolic.GreaterThan(decimal.NewFromInt(130)) {
		pressure.Kind = KindWarning
		pressure.Description = "Your blood pressure is elevated. Consider reducing sodium and managing stress."
	}
	out = append(out, pressure)

	return out
}
