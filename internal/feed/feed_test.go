package feed

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthchain/internal/vitals"
)

func TestSimulatedStaysWithinRanges(t *testing.T) {
	src, err := NewSimulated(SimulatedOptions{}, rand.New(rand.NewSource(1)), zerolog.Nop())
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		r, err := src.Next(context.Background())
		require.NoError(t, err)

		assert.GreaterOrEqual(t, r.HeartRate, 60)
		assert.LessOrEqual(t, r.HeartRate, 100)
		assert.GreaterOrEqual(t, r.BloodPressureSystolic, 110)
		assert.LessOrEqual(t, r.BloodPressureSystolic, 140)
		assert.GreaterOrEqual(t, r.OxygenSaturation, 96)
		assert.LessOrEqual(t, r.OxygenSaturation, 100)
		assert.True(t, r.Temperature.GreaterThanOrEqual(decimal.RequireFromString("97.5")))
		assert.True(t, r.Temperature.LessThanOrEqual(decimal.RequireFromString("99.5")))
		assert.Equal(t, vitals.UnitFahrenheit, r.TemperatureUnit)
	}
}

func TestSimulatedDeterministicWithSeededRand(t *testing.T) {
	a, err := NewSimulated(SimulatedOptions{}, rand.New(rand.NewSource(42)), zerolog.Nop())
	require.NoError(t, err)
	b, err := NewSimulated(SimulatedOptions{}, rand.New(rand.NewSource(42)), zerolog.Nop())
	require.NoError(t, err)

	fixed := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed }

	for i := 0; i < 10; i++ {
		ra, err := a.Next(context.Background())
		require.NoError(t, err)
		rb, err := b.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestSimulatedRejectsInvertedRange(t *testing.T) {
	opts := defaultSimulatedOptions()
	opts.HeartRateMin = 120
	opts.HeartRateMax = 60

	_, err := NewSimulated(opts, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestStaticReplaysAndExhausts(t *testing.T) {
	readings := []vitals.Reading{
		{HeartRate: 70},
		{HeartRate: 80},
	}

	src := NewStatic(readings, false)
	r, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 70, r.HeartRate)

	r, err = src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, r.HeartRate)

	_, err = src.Next(context.Background())
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestStaticCycles(t *testing.T) {
	src := NewStatic([]vitals.Reading{{HeartRate: 70}}, true)
	for i := 0; i < 5; i++ {
		r, err := src.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 70, r.HeartRate)
	}
}

func TestSourcesHonourContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim, err := NewSimulated(SimulatedOptions{}, nil, zerolog.Nop())
	require.NoError(t, err)
	_, err = sim.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewStatic([]vitals.Reading{{}}, true).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
