package calculator

import (
	"github.com/aforti1/clarity-cash/internal/model"

	"github.com/shopspring/decimal"
)

// SpendSinceLastIncome finds the latest effective-income inflow inside w and
// totals the outflows dated on or after it, up to the end of w.
func SpendSinceLastIncome(txns []model.Transaction, c Classifier, w model.Window) model.PaycheckSpend {
	period := FilterWindow(txns, w)

	var last *model.Transaction
	for i := range period {
		t := &period[i]
		e, ok := c.Lookup(t.CategoryID)
		if !ok || e.Bucket != model.BucketEffectiveIncome || !t.IsInflow() {
			continue
		}
		if last == nil || t.Date.After(last.Date) {
			last = t
		}
	}
	if last == nil {
		return model.PaycheckSpend{}
	}

	spent := decimal.Zero
	for _, t := range period {
		if t.IsOutflow() && !t.Date.Before(last.Date) {
			spent = spent.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return model.PaycheckSpend{
		Found:      true,
		Date:       last.Date,
		Amount:     -last.Amount,
		SpentSince: spent.InexactFloat64(),
	}
}
