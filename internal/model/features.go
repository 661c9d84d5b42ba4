package model

// IncomeEpsilon is the floor applied to effective income so that income
// ratios stay finite.
const IncomeEpsilon = 1e-6

// ContextFeatures holds batch-level financial ratios for one window.
// Every share is relative to EffectiveIncome.
type ContextFeatures struct {
	EffectiveIncome       float64 `json:"effective_income"`
	SavingsRate           float64 `json:"savings_rate"`
	CashAdvanceShare      float64 `json:"cash_adv_share"`
	HasCashAdvance        bool    `json:"cash_adv_flag"`
	FeesRatio             float64 `json:"fees_ratio"`
	FeesPenalty           float64 `json:"fees_penalty"`
	StructuralShare       float64 `json:"structural_share"`
	CoreFlexShare         float64 `json:"core_flex_share"`
	OtherFlexShare        float64 `json:"other_flex_share"`
	AvoidableHarmfulShare float64 `json:"avoidable_harmful_share"`
	AvoidableNeutralShare float64 `json:"avoidable_neutral_share"`
}

// IncomeAtFloor reports whether no real income was observed.
func (f ContextFeatures) IncomeAtFloor() bool { return f.EffectiveIncome <= IncomeEpsilon }

// FinancialCapacity describes how much discretionary spending the owner
// can absorb, derived from ContextFeatures.
type FinancialCapacity struct {
	EffectiveIncome   float64 `json:"effective_income"`
	NecessarySpending float64 `json:"necessary_spending"`
	SafeDiscretionary float64 `json:"safe_discretionary"`
	BufferRatio       float64 `json:"buffer_ratio"`
	FeesRatio         float64 `json:"fees_ratio"`
	SavingsRate       float64 `json:"savings_rate"`
	HasCashAdvances   bool    `json:"has_cash_advances"`
	InDistress        bool    `json:"in_distress"`
}

// IncomeAtFloor reports whether no real income was observed.
func (c FinancialCapacity) IncomeAtFloor() bool { return c.EffectiveIncome <= IncomeEpsilon }
