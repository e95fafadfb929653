package vitals

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownTemperatureUnit is returned when a temperature carries a unit
// the classifier has no thresholds for.
var ErrUnknownTemperatureUnit = errors.New("vitals: unknown temperature unit")

var (
	tempFeverF = decimal.NewFromFloat(100.4)
	tempLowF   = decimal.NewFromInt(97)
	tempFeverC = decimal.NewFromFloat(38.0)
	tempLowC   = decimal.NewFromFloat(36.1)
)

// ClassifyHeartRate labels a heart rate in beats per minute. 60 and 100
// are inclusive normal.
func ClassifyHeartRate(bpm int) Status {
	if bpm < 60 {
		return StatusLow
	}
	if bpm > 100 {
		return StatusHigh
	}
	return StatusNormal
}

// ClassifySystolic labels a systolic blood pressure in mmHg. The risk
// scorer uses a stricter 130 cutoff for longer-term risk; this one answers
// whether a single value is abnormal right now. Keep the two separate.
func ClassifySystolic(mmHg int) Status {
	if mmHg > 140 {
		return StatusHigh
	}
	if mmHg < 90 {
		return StatusLow
	}
	return StatusNormal
}

// ClassifyTemperature labels a body temperature in the given unit.
func ClassifyTemperature(value decimal.Decimal, unit TemperatureUnit) (Status, error) {
	var fever, low decimal.Decimal
	switch unit {
	case UnitFahrenheit:
		fever, low = tempFeverF, tempLowF
	case UnitCelsius:
		fever, low = tempFeverC, tempLowC
	default:
		return "", ErrUnknownTemperatureUnit
	}

	if value.GreaterThan(fever) {
		return StatusFever, nil
	}
	if value.LessThan(low) {
		return StatusLow, nil
	}
	return StatusNormal, nil
}

// ClassifyOxygen labels an oxygen saturation percentage.
func ClassifyOxygen(pct int) Status {
	if pct < 95 {
		return StatusLow
	}
	return StatusNormal
}

// ReadingStatus carries the per-vital classification of one reading.
type ReadingStatus struct {
	HeartRate     Status
	BloodPressure Status
	Temperature   Status
	Oxygen        Status
}

// ClassifyReading classifies every vital of a reading. The only failure
// mode is an unknown temperature unit.
func ClassifyReading(r Reading) (ReadingStatus, error) {
	temp, err := ClassifyTemperature(r.Temperature, r.TemperatureUnit)
	if err != nil {
		return ReadingStatus{}, err
	}
	return ReadingStatus{
		HeartRate:     ClassifyHeartRate(r.HeartRate),
		BloodPressure: ClassifySystolic(r.BloodPressureSystolic),
		Temperature:   temp,
		Oxygen:        ClassifyOxygen(r.OxygenSaturation),
	}, nil
}
