package model

import "cloud.google.com/go/civil"

// SpendProfile is the coarse behavioral class of a category.
type SpendProfile string

const (
	ProfileDiscretionaryWant SpendProfile = "DISCRETIONARY_WANT"
	ProfileSavingsPositive   SpendProfile = "SAVINGS_POSITIVE"
	ProfileFlexEssential     SpendProfile = "FLEX_ESSENTIAL"
	ProfileNegativeEvent     SpendProfile = "NEGATIVE_EVENTS"
	ProfileNonBehavioral     SpendProfile = "NON_BEHAVIORAL"
)

// ContextBucket is the finer class used for batch-level ratios.
type ContextBucket string

const (
	BucketEffectiveIncome       ContextBucket = "EFFECTIVE_INCOME"
	BucketSavings               ContextBucket = "SAVINGS_CONTENT"
	BucketEmergencyBorrowing    ContextBucket = "EMERGENCY_BORROWING"
	BucketFees                  ContextBucket = "FEES_CONTEXT"
	BucketStructuralUnavoidable ContextBucket = "STRUCTURAL_UNAVOIDABLE"
	BucketFlexCoreEssential     ContextBucket = "FLEX_CORE_ESSENTIAL"
	BucketFlexOtherEssential    ContextBucket = "FLEX_OTHER_ESSENTIAL"
	BucketAvoidableHarmful      ContextBucket = "AVOIDABLE_HARMFUL"
	BucketAvoidableNeutral      ContextBucket = "AVOIDABLE_NEUTRAL"
	BucketTransfer              ContextBucket = "TRANSFER_NEUTRAL"
)

// TaxonomyEntry maps one category id to its scoring classification.
type TaxonomyEntry struct {
	CategoryID int           `yaml:"id" json:"category_id"`
	Label      string        `yaml:"label" json:"label"`
	Profile    SpendProfile  `yaml:"profile" json:"profile"`
	Bucket     ContextBucket `yaml:"bucket" json:"bucket"`
	IsScored   bool          `yaml:"scored" json:"is_scored"`
}

// Transaction is a single bank transaction. Amount is signed:
// outflows are positive, inflows negative.
type Transaction struct {
	ID         string     `json:"transaction_id"`
	Date       civil.Date `json:"date"`
	Amount     float64    `json:"amount"`
	CategoryID int        `json:"category_id"`
	Merchant   string     `json:"merchant,omitempty"`
}

// IsOutflow reports whether money left the account.
func (t Transaction) IsOutflow() bool { return t.Amount > 0 }

// IsInflow reports whether money entered the account.
func (t Transaction) IsInflow() bool { return t.Amount < 0 }

// Window is an inclusive calendar date range.
type Window struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// Contains reports whether d falls inside the window, both ends inclusive.
func (w Window) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Valid reports whether both ends are real dates and Start <= End.
func (w Window) Valid() bool {
	return w.Start.IsValid() && w.End.IsValid() && !w.Start.After(w.End)
}

// Days returns the number of calendar days covered by the window.
func (w Window) Days() int {
	return w.End.DaysSince(w.Start) + 1
}

// TrailingWindow returns the window of the given length ending on end.
func TrailingWindow(end civil.Date, days int) Window {
	if days < 1 {
		days = 1
	}
	return Window{Start: end.AddDays(-(days - 1)), End: end}
}
