package strategy

import (
	"testing"

	"github.com/aforti1/clarity-cash/internal/model"
)

func TestScoreDiscretionary_MonotoneInAmount(t *testing.T) {
	p := DefaultParams()
	in := scoreInput{
		entry: model.TaxonomyEntry{Profile: model.ProfileDiscretionaryWant, Bucket: model.BucketAvoidableNeutral, IsScored: true},
		capacity: model.FinancialCapacity{
			EffectiveIncome:   4000,
			SafeDiscretionary: 1200,
		},
		features: model.ContextFeatures{EffectiveIncome: 4000, AvoidableNeutralShare: 0.05},
	}

	prev := 101.0
	for _, amount := range []float64{0, 1, 10, 50, 100, 300, 600, 1200, 5000, 1e6} {
		in.amount = amount
		got := scoreDiscretionary(in, p).score
		if got > prev {
			t.Errorf("amount %v: score %v rose above %v", amount, got, prev)
		}
		if got < 0 || got > 100 {
			t.Errorf("amount %v: score %v out of range", amount, got)
		}
		prev = got
	}
}

func TestScoreDiscretionary_HarmfulScoresLower(t *testing.T) {
	p := DefaultParams()
	capacity := model.FinancialCapacity{EffectiveIncome: 4000, SafeDiscretionary: 1200}
	features := model.ContextFeatures{EffectiveIncome: 4000, AvoidableHarmfulShare: 0.1, AvoidableNeutralShare: 0.1}

	neutral := scoreDiscretionary(scoreInput{
		entry: model.TaxonomyEntry{Bucket: model.BucketAvoidableNeutral}, amount: 60,
		capacity: capacity, features: features,
	}, p).score
	harmful := scoreDiscretionary(scoreInput{
		entry: model.TaxonomyEntry{Bucket: model.BucketAvoidableHarmful}, amount: 60,
		capacity: capacity, features: features,
	}, p).score
	if harmful >= neutral {
		t.Errorf("expected harmful %v < neutral %v", harmful, neutral)
	}
}

func TestScoreNegativeEvent_FrequencyHurts(t *testing.T) {
	p := DefaultParams()
	in := scoreInput{
		amount:   35,
		capacity: model.FinancialCapacity{EffectiveIncome: 3000},
		peers:    &peerIndex{negativeEvents: 1},
	}
	once := scoreNegativeEvent(in, p).score
	in.peers = &peerIndex{negativeEvents: 6}
	often := scoreNegativeEvent(in, p).score
	if often >= once {
		t.Errorf("expected repeated events %v < single event %v", often, once)
	}
}

func TestPatternPenalty(t *testing.T) {
	p := DefaultParams().Pattern
	for n := 0; n <= p.FreeOccurrences; n++ {
		if got := PatternPenalty(n, p); got != 0 {
			t.Errorf("n=%d: expected 0, got %v", n, got)
		}
	}
	prev := 0.0
	for n := p.FreeOccurrences + 1; n <= 50; n++ {
		got := PatternPenalty(n, p)
		if got <= prev {
			t.Errorf("n=%d: penalty %v not above %v", n, got, prev)
		}
		if got >= p.MaxPenalty {
			t.Errorf("n=%d: penalty %v reached the cap", n, got)
		}
		prev = got
	}
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		score float64
		want  model.SeverityTier
	}{
		{100, model.SeverityVeryLow},
		{90, model.SeverityVeryLow},
		{89.99, model.SeverityLow},
		{70, model.SeverityLow},
		{69.99, model.SeverityModerate},
		{50, model.SeverityModerate},
		{49.99, model.SeverityHigh},
		{30, model.SeverityHigh},
		{29.99, model.SeverityVeryHigh},
		{0, model.SeverityVeryHigh},
	}
	for _, tt := range tests {
		if got := ClassifySeverity(tt.score); got != tt.want {
			t.Errorf("ClassifySeverity(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func scored(id, date string, profile model.SpendProfile, score float64) model.ScoreResult {
	return model.ScoreResult{
		TransactionID: id,
		Date:          day(date),
		IsScored:      true,
		Score:         &score,
		Profile:       profile,
		Severity:      ClassifySeverity(score),
	}
}

func TestSummarize(t *testing.T) {
	results := []model.ScoreResult{
		scored("a", "2025-10-01", model.ProfileDiscretionaryWant, 90),
		scored("b", "2025-10-02", model.ProfileDiscretionaryWant, 70),
		scored("c", "2025-10-03", model.ProfileFlexEssential, 50),
		{TransactionID: "d", Severity: model.SeverityUnknown},
	}
	s := Summarize(results)

	if s.TotalTransactions != 4 || s.ScoreableTransactions != 3 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.AverageScore != 70 || s.MedianScore != 70 {
		t.Errorf("expected mean and median 70, got %v / %v", s.AverageScore, s.MedianScore)
	}
	if s.MinScore != 50 || s.MaxScore != 90 {
		t.Errorf("unexpected range %v..%v", s.MinScore, s.MaxScore)
	}
	if s.ScoreStdDev != 20 {
		t.Errorf("expected sample std 20, got %v", s.ScoreStdDev)
	}
	if got := s.ByProfile[model.ProfileDiscretionaryWant]; got.Mean != 80 || got.Count != 2 {
		t.Errorf("unexpected discretionary stats %+v", got)
	}
	if len(s.SeverityDistribution) != len(model.SeverityTiers) {
		t.Errorf("expected every tier in histogram, got %v", s.SeverityDistribution)
	}
	if s.SeverityDistribution[model.SeverityVeryHigh] != 0 || s.SeverityDistribution[model.SeverityVeryLow] != 1 {
		t.Errorf("unexpected histogram %v", s.SeverityDistribution)
	}
	if s.Error != "" {
		t.Errorf("unexpected error %q", s.Error)
	}
}

func TestSummarize_SingleScore(t *testing.T) {
	s := Summarize([]model.ScoreResult{scored("a", "2025-10-01", model.ProfileSavingsPositive, 42)})
	if s.ScoreStdDev != 0 {
		t.Errorf("expected zero std for a single score, got %v", s.ScoreStdDev)
	}
}

func TestRollingMean(t *testing.T) {
	results := []model.ScoreResult{
		scored("a", "2025-10-01", model.ProfileDiscretionaryWant, 80),
		scored("b", "2025-10-05", model.ProfileDiscretionaryWant, 60),
		{TransactionID: "c", Date: day("2025-10-06")},
	}
	w := model.Window{Start: day("2025-10-01"), End: day("2025-10-10")}
	got := RollingMean(results, w, 7)
	if len(got) != 10 {
		t.Fatalf("expected 10 days, got %d", len(got))
	}

	want := map[string]float64{
		"2025-10-01": 80,
		"2025-10-04": 80,
		"2025-10-05": 70,
		"2025-10-07": 70,
		"2025-10-08": 60,
		"2025-10-10": 60,
	}
	for _, d := range got {
		if m, ok := want[d.Date.String()]; ok && m != d.Mean {
			t.Errorf("%s: mean %v, want %v", d.Date, d.Mean, m)
		}
	}

	if RollingMean(results, model.Window{Start: w.End, End: w.Start}, 7) != nil {
		t.Error("expected nil for an inverted window")
	}
}
