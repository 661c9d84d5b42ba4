package strategy

import "math"

// PatternPenalty returns the points deducted from a discretionary score for
// the n-th purchase in the same category. It is 0 up to the free
// occurrences and approaches MaxPenalty as n grows.
func PatternPenalty(n int, p PatternParams) float64 {
	excess := n - p.FreeOccurrences
	if excess <= 0 {
		return 0
	}
	return p.MaxPenalty * (1 - math.Exp(-p.Rate*float64(excess)))
}
