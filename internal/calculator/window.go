package calculator

import (
	"github.com/aforti1/clarity-cash/internal/model"

	"cloud.google.com/go/civil"
)

// Classifier resolves a category id to its taxonomy entry.
type Classifier interface {
	Lookup(categoryID int) (model.TaxonomyEntry, bool)
}

// FilterWindow returns the transactions dated inside w, preserving order.
func FilterWindow(txns []model.Transaction, w model.Window) []model.Transaction {
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// Lookback returns [end - days, end], the window used for per-transaction
// comparisons. Both ends are inclusive, so it spans days+1 calendar days.
func Lookback(end civil.Date, days int) model.Window {
	return model.Window{Start: end.AddDays(-days), End: end}
}

// BatchSpan returns the smallest window covering every transaction.
// ok is false for an empty batch.
func BatchSpan(txns []model.Transaction) (w model.Window, ok bool) {
	if len(txns) == 0 {
		return model.Window{}, false
	}
	w = model.Window{Start: txns[0].Date, End: txns[0].Date}
	for _, t := range txns[1:] {
		if t.Date.Before(w.Start) {
			w.Start = t.Date
		}
		if t.Date.After(w.End) {
			w.End = t.Date
		}
	}
	return w, true
}
