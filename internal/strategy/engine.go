// Package strategy scores transactions against the owner's financial capacity.
package strategy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aforti1/clarity-cash/internal/calculator"
	"github.com/aforti1/clarity-cash/internal/model"
)

// HypotheticalID is assigned to a candidate purchase that has no id.
const HypotheticalID = "hypothetical"

var (
	ErrInvalidWindow        = errors.New("invalid scoring window")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	ErrMissingTransactionID = errors.New("transaction id is required")
	ErrOutsideWindow        = errors.New("transaction outside scoring window")
)

const notScoreableReason = "category not scoreable (income / structural / non-behavioral)"

// Taxonomy is the category table an Engine scores against.
type Taxonomy interface {
	calculator.Classifier
	Len() int
	CategoriesFor(profile model.SpendProfile) []int
}

// Engine scores transaction batches. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	tax          Taxonomy
	params       Params
	negativeCats map[int]struct{}
	savingsCats  map[int]struct{}
}

// NewEngine validates params and returns an Engine bound to tax.
func NewEngine(tax Taxonomy, p Params) (*Engine, error) {
	if tax == nil || tax.Len() == 0 {
		return nil, errors.New("taxonomy is required")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("scoring params: %w", err)
	}
	return &Engine{
		tax:          tax,
		params:       p,
		negativeCats: categorySet(tax.CategoriesFor(model.ProfileNegativeEvent)),
		savingsCats:  categorySet(tax.CategoriesFor(model.ProfileSavingsPositive)),
	}, nil
}

func categorySet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Params returns the engine's scoring parameters.
func (e *Engine) Params() Params { return e.params }

// peerIndex holds the figures scorers compare a transaction to. Everything
// but savings is drawn from the scored (in-window) transactions.
type peerIndex struct {
	categoryTotals map[int]float64
	occurrence     []int // 1-based rank of scored[i] among same-category txns, by date
	negativeEvents int
	savings        []model.Transaction // whole batch, for the savings lookback
}

func (e *Engine) indexPeers(scored, all []model.Transaction) *peerIndex {
	totals, _ := calculator.CategoryTotals(scored)
	idx := &peerIndex{
		categoryTotals: totals,
		occurrence:     make([]int, len(scored)),
		negativeEvents: calculator.CountWhere(scored, e.inSet(e.negativeCats)),
	}
	isSavings := e.inSet(e.savingsCats)
	for _, t := range all {
		if isSavings(t) {
			idx.savings = append(idx.savings, t)
		}
	}

	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scored[order[a]].Date.Before(scored[order[b]].Date)
	})
	seen := make(map[int]int)
	for _, i := range order {
		seen[scored[i].CategoryID]++
		idx.occurrence[i] = seen[scored[i].CategoryID]
	}
	return idx
}

func (e *Engine) inSet(set map[int]struct{}) func(model.Transaction) bool {
	return func(t model.Transaction) bool {
		_, ok := set[t.CategoryID]
		return ok
	}
}

func checkIDs(txns []model.Transaction) error {
	seen := make(map[string]struct{}, len(txns))
	for i, t := range txns {
		if t.ID == "" {
			return fmt.Errorf("transaction %d: %w", i, ErrMissingTransactionID)
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateTransaction, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// ScoreBatch scores the transactions in txns dated inside w, in input order.
// Transactions outside w are not scored; the ones before it only feed the
// savings lookback. The input slice is not modified.
func (e *Engine) ScoreBatch(txns []model.Transaction, w model.Window) (*model.ScoredBatch, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidWindow, w.Start, w.End)
	}
	if err := checkIDs(txns); err != nil {
		return nil, err
	}

	scored := calculator.FilterWindow(txns, w)
	features := calculator.ComputeContextFeatures(scored, e.tax, w, e.params.Capacity)
	capacity := calculator.CalculateCapacity(features, e.params.Capacity)
	peers := e.indexPeers(scored, txns)

	results := make([]model.ScoreResult, len(scored))
	for i, t := range scored {
		results[i] = e.scoreTransaction(t, peers.occurrence[i], features, capacity, peers)
	}

	summary := Summarize(results)
	summary.Paycheck = calculator.SpendSinceLastIncome(scored, e.tax, w)

	return &model.ScoredBatch{
		Window:   w,
		Features: features,
		Capacity: capacity,
		Results:  results,
		Summary:  summary,
	}, nil
}

// ScoreHypothetical scores candidate as if it were appended to txns. The
// candidate must be dated inside w.
func (e *Engine) ScoreHypothetical(txns []model.Transaction, w model.Window, candidate model.Transaction) (model.ScoreResult, error) {
	if candidate.ID == "" {
		candidate.ID = HypotheticalID
	}
	if w.Valid() && !w.Contains(candidate.Date) {
		return model.ScoreResult{}, fmt.Errorf("%w: %s not in %s to %s", ErrOutsideWindow, candidate.Date, w.Start, w.End)
	}
	extended := make([]model.Transaction, len(txns), len(txns)+1)
	copy(extended, txns)
	extended = append(extended, candidate)

	batch, err := e.ScoreBatch(extended, w)
	if err != nil {
		return model.ScoreResult{}, err
	}
	return batch.Results[len(batch.Results)-1], nil
}

func (e *Engine) scoreTransaction(t model.Transaction, occurrence int, features model.ContextFeatures, capacity model.FinancialCapacity, peers *peerIndex) model.ScoreResult {
	r := model.ScoreResult{
		TransactionID: t.ID,
		Date:          t.Date,
		Amount:        t.Amount,
		CategoryID:    t.CategoryID,
		Severity:      model.SeverityUnknown,
	}

	entry, ok := e.tax.Lookup(t.CategoryID)
	if !ok {
		r.Reason = fmt.Sprintf("category %d not found in taxonomy", t.CategoryID)
		return r
	}
	r.Profile = entry.Profile
	r.Bucket = entry.Bucket
	if !entry.IsScored {
		r.Reason = notScoreableReason
		return r
	}

	amount := t.Amount
	if amount < 0 {
		amount = -amount
	}
	in := scoreInput{
		txn:      t,
		entry:    entry,
		amount:   amount,
		capacity: capacity,
		features: features,
		peers:    peers,
	}

	var raw rawScore
	switch entry.Profile {
	case model.ProfileDiscretionaryWant:
		raw = scoreDiscretionary(in, e.params)
	case model.ProfileSavingsPositive:
		raw = scoreSavings(in, e.params)
	case model.ProfileFlexEssential:
		raw = scoreFlexEssential(in, e.params)
	case model.ProfileNegativeEvent:
		raw = scoreNegativeEvent(in, e.params)
	default:
		raw = scoreUnknownProfile(in, e.params)
	}

	var penalty float64
	if entry.Profile == model.ProfileDiscretionaryWant {
		penalty = PatternPenalty(occurrence, e.params.Pattern)
	}
	final := calculator.Round2(calculator.Clamp(raw.score-penalty, 0, 100))

	raw.details.BaseSeverity = ClassifySeverity(raw.score)
	c := capacity

	r.Score = &final
	r.IsScored = true
	r.BaseScore = calculator.Round2(raw.score)
	r.PatternPenalty = calculator.Round2(penalty)
	r.Severity = ClassifySeverity(final)
	r.Reason = raw.reason
	r.Details = raw.details
	r.Capacity = &c
	return r
}
