package budget

import (
	"slices"

	"hustleledger/internal/core"
)

// sortedUnique drops non-finite values, sorts ascending and removes duplicates.
func sortedUnique(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NewlyCrossed returns, ascending, the thresholds t not in triggered with
// prev < t <= next.
func NewlyCrossed(prev, next float64, triggered, thresholds []float64) []float64 {
	seen := make(map[float64]struct{}, len(triggered))
	for _, v := range triggered {
		seen[v] = struct{}{}
	}
	var crossed []float64
	for _, t := range sortedUnique(thresholds) {
		if _, ok := seen[t]; ok {
			continue
		}
		if prev < t && next >= t {
			crossed = append(crossed, t)
		}
	}
	return crossed
}

// carriedTriggers returns the thresholds already fired in periodKey, or none
// when the stored state belongs to another period.
func carriedTriggers(state core.AlertState, periodKey string) []float64 {
	if state.PeriodKey != periodKey {
		return nil
	}
	return sortedUnique(state.Triggered)
}
