package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthScoreEmptyIsBaseline(t *testing.T) {
	assert.Equal(t, 85, HealthScore(nil))
	assert.Equal(t, 85, HealthScore([]Reading{}))
}

func TestHealthScorePenalties(t *testing.T) {
	assert.Equal(t, 83, HealthScore([]Reading{reading(110, 98, 120)}))
	assert.Equal(t, 84, HealthScore([]Reading{reading(50, 98, 120)}))
	assert.Equal(t, 85, HealthScore([]Reading{reading(72, 98, 120)}))

	// Boundary heart rates carry no penalty.
	assert.Equal(t, 85, HealthScore([]Reading{reading(60, 98, 120), reading(100, 98, 120)}))
}

func TestHealthScoreClampsAtZero(t *testing.T) {
	readings := make([]Reading, 0, 60)
	for i := 0; i < 60; i++ {
		readings = append(readings, reading(110, 98, 120))
	}
	assert.Equal(t, 0, HealthScore(readings))
}

func TestHealthScoreIdempotent(t *testing.T) {
	readings := []Reading{reading(110, 98, 120), reading(50, 98, 120)}
	assert.Equal(t, HealthScore(readings), HealthScore(readings))
}

func TestCompositeScore(t *testing.T) {
	// Healthy readings keep the cardiovascular sub-score at baseline.
	got := CompositeScore([]Reading{reading(72, 98, 120)}, 78, 95)
	assert.Equal(t, (85+78+95)/3, got)
}

func TestCompositeScoreClamps(t *testing.T) {
	readings := make([]Reading, 0, 80)
	for i := 0; i < 80; i++ {
		readings = append(readings, reading(120, 98, 150))
	}
	assert.Equal(t, 0, CompositeScore(readings, 0, 0))
	assert.Equal(t, 85, CompositeScore(nil, 85, 85))

	// Out-of-range sub-scores are clamped before averaging.
	assert.Equal(t, 95, CompositeScore(nil, 200, 100))
}
