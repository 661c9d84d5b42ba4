package calculator

import (
	"github.com/aforti1/clarity-cash/internal/model"

	"github.com/shopspring/decimal"
)

// BucketSums holds signed per-bucket totals plus effective income.
type BucketSums struct {
	Income decimal.Decimal
	Totals map[model.ContextBucket]decimal.Decimal
}

// Share returns the bucket total divided by income, with negative totals
// clamped to zero first.
func (b BucketSums) Share(bucket model.ContextBucket, income float64) float64 {
	total := b.Totals[bucket]
	if total.IsNegative() {
		return 0
	}
	return total.InexactFloat64() / income
}

// SumBuckets groups txns by context bucket. Income is the absolute value of
// inflows in the effective-income bucket; every other bucket sums signed
// amounts. Transactions whose category is unknown are skipped.
func SumBuckets(txns []model.Transaction, c Classifier) BucketSums {
	sums := BucketSums{Totals: make(map[model.ContextBucket]decimal.Decimal)}
	for _, t := range txns {
		e, ok := c.Lookup(t.CategoryID)
		if !ok {
			continue
		}
		amount := decimal.NewFromFloat(t.Amount)
		if e.Bucket == model.BucketEffectiveIncome {
			if t.IsInflow() {
				sums.Income = sums.Income.Add(amount.Abs())
			}
			continue
		}
		sums.Totals[e.Bucket] = sums.Totals[e.Bucket].Add(amount)
	}
	return sums
}

// SumWhere returns the signed sum of amounts of txns matching keep.
func SumWhere(txns []model.Transaction, keep func(model.Transaction) bool) float64 {
	total := decimal.Zero
	for _, t := range txns {
		if keep(t) {
			total = total.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return total.InexactFloat64()
}

// CountWhere returns how many txns match keep.
func CountWhere(txns []model.Transaction, keep func(model.Transaction) bool) int {
	n := 0
	for _, t := range txns {
		if keep(t) {
			n++
		}
	}
	return n
}

// CategoryTotals returns the signed total and the transaction count of
// every category in txns.
func CategoryTotals(txns []model.Transaction) (totals map[int]float64, counts map[int]int) {
	sums := make(map[int]decimal.Decimal)
	counts = make(map[int]int)
	for _, t := range txns {
		sums[t.CategoryID] = sums[t.CategoryID].Add(decimal.NewFromFloat(t.Amount))
		counts[t.CategoryID]++
	}
	totals = make(map[int]float64, len(sums))
	for id, s := range sums {
		totals[id] = s.InexactFloat64()
	}
	return totals, counts
}
