package model

import "cloud.google.com/go/civil"

// SeverityTier buckets a 0-100 score; lower scores are riskier.
type SeverityTier string

const (
	SeverityVeryLow  SeverityTier = "very_low"
	SeverityLow      SeverityTier = "low"
	SeverityModerate SeverityTier = "moderate"
	SeverityHigh     SeverityTier = "high"
	SeverityVeryHigh SeverityTier = "very_high"
	SeverityUnknown  SeverityTier = "unknown"
)

// SeverityTiers lists the tiers from safest to riskiest.
var SeverityTiers = []SeverityTier{
	SeverityVeryLow, SeverityLow, SeverityModerate, SeverityHigh, SeverityVeryHigh,
}

// ScoreDetails carries the diagnostic ratios of whichever scorer ran.
// Only the fields relevant to that scorer are set.
type ScoreDetails struct {
	PctOfSafeBudget *float64     `json:"pct_of_safe_budget,omitempty"`
	SavingsPct      *float64     `json:"savings_pct,omitempty"`
	PctOfIncome     *float64     `json:"pct_of_income,omitempty"`
	SeverityPct     *float64     `json:"severity_pct,omitempty"`
	SeverityIndex   *float64     `json:"severity_index,omitempty"`
	Frequency       int          `json:"frequency,omitempty"`
	BaseSeverity    SeverityTier `json:"base_severity,omitempty"`
}

// ScoreResult is the per-transaction output of a scoring run.
type ScoreResult struct {
	TransactionID  string             `json:"transaction_id"`
	Date           civil.Date         `json:"date"`
	Amount         float64            `json:"amount"`
	CategoryID     int                `json:"category_id"`
	Score          *float64           `json:"score"`
	IsScored       bool               `json:"is_scored"`
	Profile        SpendProfile       `json:"profile,omitempty"`
	Bucket         ContextBucket      `json:"context_bucket,omitempty"`
	BaseScore      float64            `json:"base_score"`
	PatternPenalty float64            `json:"pattern_penalty"`
	Severity       SeverityTier       `json:"severity"`
	Reason         string             `json:"reason,omitempty"`
	Details        ScoreDetails       `json:"details"`
	Capacity       *FinancialCapacity `json:"capacity,omitempty"`
}

// ProfileStats aggregates final scores of one spend profile.
type ProfileStats struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// PaycheckSpend is outflow since the most recent income deposit.
type PaycheckSpend struct {
	Found      bool       `json:"found"`
	Date       civil.Date `json:"date"`
	Amount     float64    `json:"amount"`
	SpentSince float64    `json:"spent_since"`
}

// BatchSummary aggregates a scored batch.
type BatchSummary struct {
	TotalTransactions     int                           `json:"total_transactions"`
	ScoreableTransactions int                           `json:"scoreable_transactions"`
	AverageScore          float64                       `json:"average_score"`
	MedianScore           float64                       `json:"median_score"`
	MinScore              float64                       `json:"min_score"`
	MaxScore              float64                       `json:"max_score"`
	ScoreStdDev           float64                       `json:"score_std"`
	ByProfile             map[SpendProfile]ProfileStats `json:"scores_by_profile"`
	SeverityDistribution  map[SeverityTier]int          `json:"severity_distribution"`
	Paycheck              PaycheckSpend                 `json:"paycheck"`
	Error                 string                        `json:"error,omitempty"`
}

// ScoredBatch is the full output of scoring one batch over one window.
type ScoredBatch struct {
	Window   Window            `json:"window"`
	Features ContextFeatures   `json:"context_features"`
	Capacity FinancialCapacity `json:"capacity"`
	Results  []ScoreResult     `json:"results"`
	Summary  BatchSummary      `json:"summary"`
}

// DailyMean is one point of a rolling mean score series.
type DailyMean struct {
	Date  civil.Date `json:"date"`
	Mean  float64    `json:"mean"`
	Count int        `json:"count"`
}
