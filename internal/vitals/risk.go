package vitals

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds arithmetic means over a reading history. Means are exact
// decimals so threshold comparisons do not lose fractional averages
// (a mean heart rate of 100.5 must count as above 100).
type Summary struct {
	MeanHeartRate decimal.Decimal
	MeanOxygen    decimal.Decimal
	MeanSystolic  decimal.Decimal
	MeanDiastolic decimal.Decimal
	Count         int
}

var (
	hrLow       = decimal.NewFromInt(60)
	hrHigh      = decimal.NewFromInt(100)
	oxygenLow   = decimal.NewFromInt(95)
	systolicBar = decimal.NewFromInt(130)
)

// riskRule names one condition on the summary, the factor it contributes,
// and its weight. Rules are evaluated in declaration order and that order
// is observable in the assessment output.
type riskRule struct {
	factor         string
	recommendation string
	weight         int
	triggered      func(s Summary) bool
}

var riskRules = []riskRule{
	{
		factor:         "Abnormal Heart Rate",
		recommendation: "Monitor your heart rate regularly and consult with a cardiologist if symptoms persist",
		weight:         2,
		triggered: func(s Summary) bool {
			return s.MeanHeartRate.LessThan(hrLow) || s.MeanHeartRate.GreaterThan(hrHigh)
		},
	},
	{
		factor:         "Low Oxygen Saturation",
		recommendation: "Ensure proper ventilation and consider consulting a respiratory specialist",
		weight:         3,
		triggered: func(s Summary) bool {
			return s.MeanOxygen.LessThan(oxygenLow)
		},
	},
	{
		factor:         "High Blood Pressure",
		recommendation: "Reduce sodium intake, manage stress, and increase physical activity",
		weight:         2,
		triggered: func(s Summary) bool {
			return s.MeanSystolic.GreaterThan(systolicBar)
		},
	},
}

const fallbackRecommendation = "Maintain your current healthy lifestyle and continue regular monitoring"

// Summarize computes means across the full history. Order of the input is
// irrelevant. An empty history yields a zero Summary with Count 0.
func Summarize(readings []Reading) Summary {
	if len(readings) == 0 {
		return Summary{}
	}

	var hr, oxy, sys, dia decimal.Decimal
	for _, r := range readings {
		hr = hr.Add(decimal.NewFromInt(int64(r.HeartRate)))
		oxy = oxy.Add(decimal.NewFromInt(int64(r.OxygenSaturation)))
		sys = sys.Add(decimal.NewFromInt(int64(r.BloodPressureSystolic)))
		dia = dia.Add(decimal.NewFromInt(int64(r.BloodPressureDiastolic)))
	}

	n := decimal.NewFromInt(int64(len(readings)))
	return Summary{
		MeanHeartRate: hr.Div(n),
		MeanOxygen:    oxy.Div(n),
		MeanSystolic:  sys.Div(n),
		MeanDiastolic: dia.Div(n),
		Count:         len(readings),
	}
}

// AssessRisk turns a reading history into a RiskAssessment. An empty
// history returns nil: no data is a valid outcome, not an error. The
// cumulative rule weight maps to a tier with inclusive boundaries
// (>=5 high, >=2 medium, else low).
func AssessRisk(readings []Reading, assessedAt time.Time) *RiskAssessment {
	if len(readings) == 0 {
		return nil
	}

	summary := Summarize(readings)

	factors := make([]string, 0, len(riskRules))
	recommendations := make([]string, 0, len(riskRules))
	score := 0

	for _, rule := range riskRules {
		if !rule.triggered(summary) {
			continue
		}
		factors = append(factors, rule.factor)
		recommendations = append(recommendations, rule.recommendation)
		score += rule.weight
	}

	level := RiskLow
	if score >= 5 {
		level = RiskHigh
	} else if score >= 2 {
		level = RiskMedium
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, fallbackRecommendation)
	}

	return &RiskAssessment{
		RiskLevel:       level,
		RiskFactors:     factors,
		Recommendations: recommendations,
		AssessedAt:      assessedAt,
	}
}
