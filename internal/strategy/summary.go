package strategy

import (
	"github.com/aforti1/clarity-cash/internal/calculator"
	"github.com/aforti1/clarity-cash/internal/model"
)

// Summarize computes aggregate statistics over the scored results.
// Paycheck is left for the caller to fill.
func Summarize(results []model.ScoreResult) model.BatchSummary {
	s := model.BatchSummary{
		TotalTransactions:    len(results),
		ByProfile:            make(map[model.SpendProfile]model.ProfileStats),
		SeverityDistribution: make(map[model.SeverityTier]int, len(model.SeverityTiers)),
	}
	for _, tier := range model.SeverityTiers {
		s.SeverityDistribution[tier] = 0
	}

	var scores []float64
	byProfile := make(map[model.SpendProfile][]float64)
	for _, r := range results {
		if !r.IsScored || r.Score == nil {
			continue
		}
		scores = append(scores, *r.Score)
		byProfile[r.Profile] = append(byProfile[r.Profile], *r.Score)
		s.SeverityDistribution[r.Severity]++
	}

	s.ScoreableTransactions = len(scores)
	if len(scores) == 0 {
		s.Error = "no scoreable transactions"
		return s
	}

	lo, hi := calculator.MinMax(scores)
	s.AverageScore = calculator.Round2(calculator.Mean(scores))
	s.MedianScore = calculator.Round2(calculator.Median(scores))
	s.MinScore = calculator.Round2(lo)
	s.MaxScore = calculator.Round2(hi)
	s.ScoreStdDev = calculator.Round2(calculator.SampleStdDev(scores))
	for profile, vals := range byProfile {
		s.ByProfile[profile] = model.ProfileStats{
			Mean:  calculator.Round2(calculator.Mean(vals)),
			Count: len(vals),
		}
	}
	return s
}

// RollingMean returns, for each day of w, the mean score of scored results
// dated within the trailing days ending that day. Days with nothing to
// average are omitted.
func RollingMean(results []model.ScoreResult, w model.Window, days int) []model.DailyMean {
	if !w.Valid() {
		return nil
	}
	var out []model.DailyMean
	for d := w.Start; !d.After(w.End); d = d.AddDays(1) {
		span := model.TrailingWindow(d, days)
		var vals []float64
		for _, r := range results {
			if r.IsScored && r.Score != nil && span.Contains(r.Date) {
				vals = append(vals, *r.Score)
			}
		}
		if len(vals) == 0 {
			continue
		}
		out = append(out, model.DailyMean{
			Date:  d,
			Mean:  calculator.Round2(calculator.Mean(vals)),
			Count: len(vals),
		})
	}
	return out
}
