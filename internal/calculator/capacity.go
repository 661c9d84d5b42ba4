package calculator

import (
	"math"

	"github.com/aforti1/clarity-cash/internal/model"
)

// CalculateCapacity derives the safe discretionary budget and the distress
// flag from context features.
func CalculateCapacity(f model.ContextFeatures, p Params) model.FinancialCapacity {
	income := f.EffectiveIncome
	necessary := income * (f.StructuralShare + f.CoreFlexShare + f.OtherFlexShare)
	recommendedSavings := income * p.RecommendedSavingsRate
	safe := math.Max(0, income-necessary-recommendedSavings)

	var buffer float64
	if !f.IncomeAtFloor() {
		buffer = safe / income
	}

	return model.FinancialCapacity{
		EffectiveIncome:   income,
		NecessarySpending: necessary,
		SafeDiscretionary: safe,
		BufferRatio:       buffer,
		FeesRatio:         f.FeesRatio,
		SavingsRate:       f.SavingsRate,
		HasCashAdvances:   f.HasCashAdvance,
		InDistress:        f.HasCashAdvance || f.FeesRatio > p.DistressFeesRatio,
	}
}
