package app

import (
	"time"

	"curare-challenge/internal/domain"
)

// PenaltyWeight maps the seconds spent on a question to a penalty in [0, 1]:
// nothing below the lower bound, everything above the upper bound and a
// linear ramp in between.
func PenaltyWeight(window domain.PenaltyWindow, seconds float64) float64 {
	lower := window.Lower.Seconds()
	upper := window.Upper.Seconds()
	switch {
	case seconds < lower:
		return 0
	case seconds > upper:
		return 1
	default:
		return (seconds - lower) / (upper - lower)
	}
}

// WeightedScores subtracts the time penalty from each score, floored at 0.
// Both slices are indexed by answer slot; missing times count as no penalty.
func WeightedScores(window domain.PenaltyWindow, scores, times []float64) []float64 {
	out := make([]float64, len(scores))
	for i, score := range scores {
		var w float64
		if i < len(times) {
			w = PenaltyWeight(window, times[i])
		}
		ws := round2(score - w)
		if ws > 0 {
			out[i] = ws
		}
	}
	return out
}

// elapsedSeconds converts two millisecond timestamps into seconds.
func elapsedSeconds(from, to int64) float64 {
	return float64(to-from) / float64(time.Second/time.Millisecond)
}
