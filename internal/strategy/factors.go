package strategy

import (
	"fmt"
	"math"

	"github.com/aforti1/clarity-cash/internal/calculator"
	"github.com/aforti1/clarity-cash/internal/model"
)

// scoreInput is everything a profile scorer may look at for one transaction.
type scoreInput struct {
	txn      model.Transaction
	entry    model.TaxonomyEntry
	amount   float64 // absolute value of txn.Amount
	capacity model.FinancialCapacity
	features model.ContextFeatures
	peers    *peerIndex
}

// rawScore is a scorer's result before the pattern penalty.
type rawScore struct {
	score   float64
	details model.ScoreDetails
	reason  string
}

func ptr(v float64) *float64 { return &v }

// decay falls from 1 toward 0 as ratio grows past mid.
func decay(ratio, mid, power float64) float64 {
	if ratio <= 0 {
		return 1
	}
	return 1 / (1 + math.Pow(ratio/mid, power))
}

// scoreDiscretionary judges a want against the safe discretionary budget.
func scoreDiscretionary(in scoreInput, p Params) rawScore {
	dp := p.Discretionary
	safe := in.capacity.SafeDiscretionary
	if safe <= 0 || in.capacity.IncomeAtFloor() {
		return rawScore{
			score:  dp.NoBudgetScore,
			reason: "no safe discretionary budget available",
		}
	}

	ratio := in.amount / safe
	base := 100 * decay(ratio, dp.Mid, dp.Power)

	if in.entry.Bucket == model.BucketAvoidableHarmful {
		cut := math.Min(dp.HarmfulMaxCut, in.features.AvoidableHarmfulShare*dp.HarmfulShareWeight)
		base *= math.Max(dp.HarmfulFloor, 1-cut)
	} else {
		base *= 1 - math.Min(dp.NeutralMaxCut, in.features.AvoidableNeutralShare*dp.NeutralShareWeight)
	}

	if in.capacity.InDistress {
		index := math.Min(dp.DistressIndexCap,
			in.capacity.FeesRatio/p.Capacity.FeeSaturation+in.features.CashAdvanceShare*dp.CashAdvanceWeight)
		base *= 1 - dp.DistressCut*index
	}

	return rawScore{
		score:   calculator.Clamp(base, 0, 100),
		details: model.ScoreDetails{PctOfSafeBudget: ptr(ratio * 100)},
	}
}

// scoreSavings rewards savings that keep the trailing savings rate near the
// recommended rate.
func scoreSavings(in scoreInput, p Params) rawScore {
	if in.capacity.IncomeAtFloor() {
		return rawScore{score: p.NeutralScore, reason: "no income observed in window"}
	}

	lookback := calculator.Lookback(in.txn.Date, p.Savings.LookbackDays)
	saved := calculator.SumWhere(in.peers.savings, func(t model.Transaction) bool {
		return lookback.Contains(t.Date)
	})
	rate := math.Max(0, saved) / in.capacity.EffectiveIncome

	rel := rate / p.Capacity.RecommendedSavingsRate
	base := 100 * math.Exp(-((rel-1)*(rel-1))/p.Savings.Width)

	if in.capacity.InDistress {
		index := math.Min(1,
			in.features.CashAdvanceShare*p.Savings.CashAdvanceWeight+in.capacity.FeesRatio/p.Capacity.FeeSaturation)
		base *= 1 - p.Savings.DistressCut*index
	}

	return rawScore{
		score:   calculator.Clamp(base, 0, 100),
		details: model.ScoreDetails{SavingsPct: ptr(rate * 100)},
	}
}

// scoreFlexEssential penalises a necessity category once its batch-wide
// total grows past the sweet spot share of income.
func scoreFlexEssential(in scoreInput, p Params) rawScore {
	if in.capacity.IncomeAtFloor() {
		return rawScore{score: p.NeutralScore, reason: "no income observed in window"}
	}

	share := in.peers.categoryTotals[in.txn.CategoryID] / in.capacity.EffectiveIncome
	base := 100.0
	if share > 0 {
		x := share / p.Flex.SweetSpot / 2
		base = 100 / (1 + x*x)
	}
	if in.capacity.InDistress {
		base *= p.Flex.DistressFactor
	}

	return rawScore{
		score:   calculator.Clamp(base, 0, 100),
		details: model.ScoreDetails{PctOfIncome: ptr(share * 100)},
	}
}

// scoreNegativeEvent scores fees and emergency borrowing by size relative to
// income and by how often such events occur in the batch.
func scoreNegativeEvent(in scoreInput, p Params) rawScore {
	severityPct := 100.0
	if !in.capacity.IncomeAtFloor() {
		severityPct = in.amount / in.capacity.EffectiveIncome * 100
	}
	frequency := in.peers.negativeEvents
	if frequency < 1 {
		frequency = 1
	}
	index := severityPct * math.Sqrt(float64(frequency))

	base := 100 / (1 + math.Pow(index, p.Negative.Exponent))
	if in.capacity.InDistress {
		base *= p.Negative.DistressFactor
	}

	return rawScore{
		score: calculator.Clamp(base, 0, 100),
		details: model.ScoreDetails{
			SeverityPct:   ptr(severityPct),
			SeverityIndex: ptr(index),
			Frequency:     frequency,
		},
	}
}

// scoreUnknownProfile is the fallback for a taxonomy profile no scorer handles.
func scoreUnknownProfile(in scoreInput, p Params) rawScore {
	return rawScore{
		score:  p.NeutralScore,
		reason: fmt.Sprintf("unknown spend profile %q", in.entry.Profile),
	}
}
