package vitals

// Health scoring starts from a baseline and deducts per-reading penalties.
// Both variants clamp to [0, 100].

const baselineScore = 85

// HealthScore produces a 0-100 scalar from a set of readings. Each reading
// with a heart rate above 100 deducts 2 points, below 60 deducts 1. An
// empty set returns the baseline unmodified.
func HealthScore(readings []Reading) int {
	score := baselineScore
	for _, r := range readings {
		if r.HeartRate > 100 {
			score -= 2
		} else if r.HeartRate < 60 {
			score -= 1
		}
	}
	return clampScore(score)
}

// CompositeScore is the richer variant: the cardiovascular sub-score is
// derived from the readings while mental and preventive sub-scores come
// from the caller, and the three are averaged.
func CompositeScore(readings []Reading, mental, preventive int) int {
	cardio := cardiovascularScore(readings)
	sum := cardio + clampScore(mental) + clampScore(preventive)
	return clampScore(sum / 3)
}

// cardiovascularScore extends the heart-rate penalties with systolic ones:
// above 140 deducts 2, below 90 deducts 1.
func cardiovascularScore(readings []Reading) int {
	score := baselineScore
	for _, r := range readings {
		if r.HeartRate > 100 {
			score -= 2
		} else if r.HeartRate < 60 {
			score -= 1
		}
		if r.BloodPressureSystolic > 140 {
			score -= 2
		} else if r.BloodPressureSystolic < 90 {
			score -= 1
		}
	}
	return clampScore(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
