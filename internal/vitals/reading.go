package vitals

import (
	"time"

	"github.com/shopspring/decimal"
)

// TemperatureUnit identifies the scale a temperature was measured in.
// Every reading carries its unit explicitly; nothing downstream may assume
// Fahrenheit.
type TemperatureUnit string

const (
	UnitFahrenheit TemperatureUnit = "F"
	UnitCelsius    TemperatureUnit = "C"
)

// Status is the qualitative classification of a single vital value.
type Status string

const (
	StatusLow    Status = "low"
	StatusNormal Status = "normal"
	StatusHigh   Status = "high"
	StatusFever  Status = "fever"
)

// RiskLevel is the tier assigned by a risk assessment.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank orders risk levels for threshold comparisons. Unknown levels rank
// below low.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// Metadata holds optional user-supplied measurement context. Fields are
// named and typed rather than an open map so the persistence boundary stays
// type safe.
type Metadata struct {
	Weight *decimal.Decimal `json:"weight,omitempty"`
	Height *decimal.Decimal `json:"height,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
}

// Reading is one timestamped vital-sign measurement. Readings are immutable
// once created and persisted append-only.
type Reading struct {
	HeartRate              int
	BloodPressureSystolic  int
	BloodPressureDiastolic int
	Temperature            decimal.Decimal
	TemperatureUnit        TemperatureUnit
	OxygenSaturation       int
	Timestamp              time.Time
	Metadata               *Metadata
}

// RiskAssessment is the derived output of scoring a reading history.
// Factor and recommendation order follows rule evaluation order. The latest
// assessment by AssessedAt is authoritative; older ones are audit history.
type RiskAssessment struct {
	RiskLevel       RiskLevel
	RiskFactors     []string
	Recommendations []string
	AssessedAt      time.Time
}
