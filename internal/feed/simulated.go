package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"healthchain/internal/vitals"
)

// SimulatedOptions bound the generated values. Defaults are the clinically
// plausible demo ranges: heart rate 60-100, systolic 110-140, diastolic
// 70-90, oxygen 96-100, temperature 97.5-99.5 F.
type SimulatedOptions struct {
	HeartRateMin   int
	HeartRateMax   int
	SystolicMin    int
	SystolicMax    int
	DiastolicMin   int
	DiastolicMax   int
	OxygenMin      int
	OxygenMax      int
	TemperatureMin float64
	TemperatureMax float64
	Unit           vitals.TemperatureUnit
}

func defaultSimulatedOptions() SimulatedOptions {
	return SimulatedOptions{
		HeartRateMin:   60,
		HeartRateMax:   100,
		SystolicMin:    110,
		SystolicMax:    140,
		DiastolicMin:   70,
		DiastolicMax:   90,
		OxygenMin:      96,
		OxygenMax:      100,
		TemperatureMin: 97.5,
		TemperatureMax: 99.5,
		Unit:           vitals.UnitFahrenheit,
	}
}

// Simulated generates readings within configured ranges. Pass a seeded
// rand.Rand for deterministic output in tests; a nil rng seeds from the
// clock.
type Simulated struct {
	opts   SimulatedOptions
	logger zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulated constructs a simulated source.
func NewSimulated(opts SimulatedOptions, rng *rand.Rand, logger zerolog.Logger) (*Simulated, error) {
	defaults := defaultSimulatedOptions()
	if opts.HeartRateMax == 0 && opts.SystolicMax == 0 && opts.OxygenMax == 0 {
		opts = defaults
	}
	if opts.Unit == "" {
		opts.Unit = defaults.Unit
	}
	if err := validateRanges(opts); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Simulated{
		opts:   opts,
		logger: logger.With().Str("component", "simulated_feed").Logger(),
		rng:    rng,
		now:    time.Now,
	}, nil
}

func validateRanges(opts SimulatedOptions) error {
	type span struct {
		name     string
		min, max int
	}
	spans := []span{
		{"heart_rate", opts.HeartRateMin, opts.HeartRateMax},
		{"systolic", opts.SystolicMin, opts.SystolicMax},
		{"diastolic", opts.DiastolicMin, opts.DiastolicMax},
		{"oxygen", opts.OxygenMin, opts.OxygenMax},
	}
	for _, s := range spans {
		if s.min > s.max {
			return fmt.Errorf("feed: %s range inverted (%d > %d)", s.name, s.min, s.max)
		}
	}
	if opts.TemperatureMin > opts.TemperatureMax {
		return fmt.Errorf("feed: temperature range inverted (%.1f > %.1f)", opts.TemperatureMin, opts.TemperatureMax)
	}
	return nil
}

// Next emits one reading. The context is accepted for interface parity;
// generation never blocks.
func (s *Simulated) Next(ctx context.Context) (vitals.Reading, error) {
	if err := ctx.Err(); err != nil {
		return vitals.Reading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	temp := s.opts.TemperatureMin + s.rng.Float64()*(s.opts.TemperatureMax-s.opts.TemperatureMin)

	reading := vitals.Reading{
		HeartRate:              s.intBetween(s.opts.HeartRateMin, s.opts.HeartRateMax),
		BloodPressureSystolic:  s.intBetween(s.opts.SystolicMin, s.opts.SystolicMax),
		BloodPressureDiastolic: s.intBetween(s.opts.DiastolicMin, s.opts.DiastolicMax),
		OxygenSaturation:       s.intBetween(s.opts.OxygenMin, s.opts.OxygenMax),
		Temperature:            decimal.NewFromFloat(temp).Round(1),
		TemperatureUnit:        s.opts.Unit,
		Timestamp:              s.now().UTC(),
	}

	s.logger.Debug().
		Int("heart_rate", reading.HeartRate).
		Int("oxygen", reading.OxygenSaturation).
		Msg("generated simulated reading")

	return reading, nil
}

func (s *Simulated) intBetween(min, max int) int {
	if min == max {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

var _ Source = (*Simulated)(nil)
