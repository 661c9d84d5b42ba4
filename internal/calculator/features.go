package calculator

import (
	"errors"
	"math"

	"github.com/aforti1/clarity-cash/internal/model"
)

// Params are the thresholds of the context and capacity models.
type Params struct {
	// RecommendedSavingsRate is the share of income reserved for savings.
	RecommendedSavingsRate float64 `yaml:"recommended_savings_rate"`
	// DistressFeesRatio is the fee burden above which a batch is in distress.
	DistressFeesRatio float64 `yaml:"distress_fees_ratio"`
	// FeeSaturation is the fee burden at which the fees penalty reaches 1.
	FeeSaturation float64 `yaml:"fee_saturation"`
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		RecommendedSavingsRate: 0.15,
		DistressFeesRatio:      0.02,
		FeeSaturation:          0.05,
	}
}

// Validate rejects thresholds that would break the ratio math.
func (p Params) Validate() error {
	if p.RecommendedSavingsRate <= 0 || p.RecommendedSavingsRate >= 1 {
		return errors.New("recommended savings rate must be in (0, 1)")
	}
	if p.DistressFeesRatio < 0 {
		return errors.New("distress fees ratio must not be negative")
	}
	if p.FeeSaturation <= 0 {
		return errors.New("fee saturation must be positive")
	}
	return nil
}

// ComputeContextFeatures aggregates the transactions dated inside w into
// income-relative ratios. Income below zero or absent is floored at
// model.IncomeEpsilon.
func ComputeContextFeatures(txns []model.Transaction, c Classifier, w model.Window, p Params) model.ContextFeatures {
	sums := SumBuckets(FilterWindow(txns, w), c)

	income := sums.Income.InexactFloat64()
	if income <= 0 {
		income = model.IncomeEpsilon
	}

	f := model.ContextFeatures{
		EffectiveIncome:       income,
		SavingsRate:           sums.Share(model.BucketSavings, income),
		CashAdvanceShare:      sums.Share(model.BucketEmergencyBorrowing, income),
		FeesRatio:             sums.Share(model.BucketFees, income),
		StructuralShare:       sums.Share(model.BucketStructuralUnavoidable, income),
		CoreFlexShare:         sums.Share(model.BucketFlexCoreEssential, income),
		OtherFlexShare:        sums.Share(model.BucketFlexOtherEssential, income),
		AvoidableHarmfulShare: sums.Share(model.BucketAvoidableHarmful, income),
		AvoidableNeutralShare: sums.Share(model.BucketAvoidableNeutral, income),
	}
	f.HasCashAdvance = f.CashAdvanceShare > 0
	f.FeesPenalty = math.Min(1, f.FeesRatio/p.FeeSaturation)
	return f
}
