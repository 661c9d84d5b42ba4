package calculator

import (
	"math"
	"testing"

	"github.com/aforti1/clarity-cash/internal/model"
	"github.com/aforti1/clarity-cash/internal/taxonomy"

	"cloud.google.com/go/civil"
)

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func sampleBatch() []model.Transaction {
	return []model.Transaction{
		{ID: "t1", Date: day("2025-10-01"), Amount: -2000.00, CategoryID: 506},
		{ID: "t2", Date: day("2025-10-02"), Amount: 1000.00, CategoryID: 600},
		{ID: "t3", Date: day("2025-10-03"), Amount: 120.50, CategoryID: 540},
		{ID: "t4", Date: day("2025-10-04"), Amount: 45.00, CategoryID: 588},
		{ID: "t5", Date: day("2025-10-05"), Amount: 35.00, CategoryID: 525},
		{ID: "t6", Date: day("2025-11-05"), Amount: 500.00, CategoryID: 588},
	}
}

func TestComputeContextFeatures(t *testing.T) {
	w := model.Window{Start: day("2025-10-01"), End: day("2025-10-06")}
	f := ComputeContextFeatures(sampleBatch(), taxonomy.Default(), w, DefaultParams())

	checks := []struct {
		name      string
		got, want float64
	}{
		{"income", f.EffectiveIncome, 2000},
		{"structural", f.StructuralShare, 0.5},
		{"core flex", f.CoreFlexShare, 0.06025},
		{"other flex", f.OtherFlexShare, 0.0225},
		{"fees ratio", f.FeesRatio, 0.0175},
		{"fees penalty", f.FeesPenalty, 0.35},
		{"savings", f.SavingsRate, 0},
		{"cash advance", f.CashAdvanceShare, 0},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if f.HasCashAdvance {
		t.Error("expected no cash advance flag")
	}
}

func TestComputeContextFeatures_EmptyWindow(t *testing.T) {
	w := model.Window{Start: day("2024-01-01"), End: day("2024-01-31")}
	f := ComputeContextFeatures(sampleBatch(), taxonomy.Default(), w, DefaultParams())
	if f.EffectiveIncome != model.IncomeEpsilon {
		t.Errorf("expected epsilon income, got %v", f.EffectiveIncome)
	}
	if !f.IncomeAtFloor() {
		t.Error("expected income at floor")
	}
	if f.StructuralShare != 0 || f.FeesRatio != 0 || f.FeesPenalty != 0 {
		t.Errorf("expected zero shares, got %+v", f)
	}
}

func TestComputeContextFeatures_NegativeBucketClamped(t *testing.T) {
	txns := []model.Transaction{
		{ID: "a", Date: day("2025-10-01"), Amount: -1000, CategoryID: 506},
		{ID: "b", Date: day("2025-10-02"), Amount: -50, CategoryID: 525}, // fee refund
	}
	w := model.Window{Start: day("2025-10-01"), End: day("2025-10-31")}
	f := ComputeContextFeatures(txns, taxonomy.Default(), w, DefaultParams())
	if f.FeesRatio != 0 {
		t.Errorf("expected negative fee total to clamp to 0, got %v", f.FeesRatio)
	}
}

func TestComputeContextFeatures_FeesPenaltySaturates(t *testing.T) {
	txns := []model.Transaction{
		{ID: "a", Date: day("2025-10-01"), Amount: -1000, CategoryID: 506},
		{ID: "b", Date: day("2025-10-02"), Amount: 80, CategoryID: 525},
	}
	w := model.Window{Start: day("2025-10-01"), End: day("2025-10-31")}
	f := ComputeContextFeatures(txns, taxonomy.Default(), w, DefaultParams())
	if f.FeesPenalty != 1 {
		t.Errorf("expected saturated fees penalty, got %v", f.FeesPenalty)
	}
}

func TestComputeContextFeatures_IncomeIgnoresOutflows(t *testing.T) {
	txns := []model.Transaction{
		{ID: "a", Date: day("2025-10-01"), Amount: -3000, CategoryID: 506},
		{ID: "b", Date: day("2025-10-02"), Amount: 200, CategoryID: 506},
		{ID: "c", Date: day("2025-10-03"), Amount: -10, CategoryID: 505},
	}
	w := model.Window{Start: day("2025-10-01"), End: day("2025-10-31")}
	f := ComputeContextFeatures(txns, taxonomy.Default(), w, DefaultParams())
	if !approx(f.EffectiveIncome, 3010) {
		t.Errorf("expected income 3010, got %v", f.EffectiveIncome)
	}
}

func TestCalculateCapacity(t *testing.T) {
	w := model.Window{Start: day("2025-10-01"), End: day("2025-10-06")}
	f := ComputeContextFeatures(sampleBatch(), taxonomy.Default(), w, DefaultParams())
	c := CalculateCapacity(f, DefaultParams())

	if !approx(c.NecessarySpending, 1165.5) {
		t.Errorf("necessary: got %v, want 1165.5", c.NecessarySpending)
	}
	if !approx(c.SafeDiscretionary, 534.5) {
		t.Errorf("safe discretionary: got %v, want 534.5", c.SafeDiscretionary)
	}
	if !approx(c.BufferRatio, 0.26725) {
		t.Errorf("buffer: got %v, want 0.26725", c.BufferRatio)
	}
	if c.InDistress {
		t.Error("fees below 2% of income should not be distress")
	}
}

func TestCalculateCapacity_Distress(t *testing.T) {
	tests := []struct {
		name string
		f    model.ContextFeatures
		want bool
	}{
		{"cash advance", model.ContextFeatures{EffectiveIncome: 1000, HasCashAdvance: true, CashAdvanceShare: 0.1}, true},
		{"fees above threshold", model.ContextFeatures{EffectiveIncome: 1000, FeesRatio: 0.021}, true},
		{"fees at threshold", model.ContextFeatures{EffectiveIncome: 1000, FeesRatio: 0.02}, false},
		{"healthy", model.ContextFeatures{EffectiveIncome: 1000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateCapacity(tt.f, DefaultParams()).InDistress; got != tt.want {
				t.Errorf("InDistress = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateCapacity_Overspent(t *testing.T) {
	f := model.ContextFeatures{EffectiveIncome: 1000, StructuralShare: 0.9}
	c := CalculateCapacity(f, DefaultParams())
	if c.SafeDiscretionary != 0 || c.BufferRatio != 0 {
		t.Errorf("expected no safe budget, got %+v", c)
	}
}

func TestCalculateCapacity_IncomeFloor(t *testing.T) {
	f := model.ContextFeatures{EffectiveIncome: model.IncomeEpsilon}
	c := CalculateCapacity(f, DefaultParams())
	if c.BufferRatio != 0 {
		t.Errorf("expected zero buffer at income floor, got %v", c.BufferRatio)
	}
	if !c.IncomeAtFloor() {
		t.Error("expected capacity to report income at floor")
	}
}

func TestStats(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	if got := Mean(values); got != 2.5 {
		t.Errorf("Mean = %v", got)
	}
	if got := Median(values); got != 2.5 {
		t.Errorf("Median = %v", got)
	}
	if values[0] != 4 {
		t.Error("Median must not reorder its input")
	}
	if got := Median([]float64{5, 1, 9}); got != 5 {
		t.Errorf("odd Median = %v", got)
	}
	if got := SampleStdDev(values); !approx(got, math.Sqrt(5.0/3.0)) {
		t.Errorf("SampleStdDev = %v", got)
	}
	if got := SampleStdDev([]float64{7}); got != 0 {
		t.Errorf("SampleStdDev single = %v", got)
	}
	lo, hi := MinMax(values)
	if lo != 1 || hi != 4 {
		t.Errorf("MinMax = %v, %v", lo, hi)
	}
	if Round2(1.005000001) != 1.01 || Round2(2.344) != 2.34 {
		t.Error("Round2 mismatch")
	}
	if Clamp(120, 0, 100) != 100 || Clamp(-3, 0, 100) != 0 {
		t.Error("Clamp mismatch")
	}
}

func TestLookback(t *testing.T) {
	w := Lookback(day("2025-10-31"), 30)
	if w.Start != day("2025-10-01") || w.End != day("2025-10-31") {
		t.Errorf("unexpected lookback %v", w)
	}
}

func TestBatchSpan(t *testing.T) {
	w, ok := BatchSpan(sampleBatch())
	if !ok || w.Start != day("2025-10-01") || w.End != day("2025-11-05") {
		t.Errorf("unexpected span %v (ok=%v)", w, ok)
	}
	if _, ok := BatchSpan(nil); ok {
		t.Error("expected no span for empty batch")
	}
}

func TestCategoryTotals(t *testing.T) {
	totals, counts := CategoryTotals(sampleBatch())
	if !approx(totals[588], 545) || counts[588] != 2 {
		t.Errorf("gas: total=%v count=%d", totals[588], counts[588])
	}
	if counts[531] != 0 {
		t.Error("expected no restaurant transactions")
	}
}

func TestSpendSinceLastIncome(t *testing.T) {
	txns := []model.Transaction{
		{ID: "p1", Date: day("2025-10-01"), Amount: -1500, CategoryID: 506},
		{ID: "a", Date: day("2025-10-03"), Amount: 100, CategoryID: 540},
		{ID: "p2", Date: day("2025-10-15"), Amount: -1500, CategoryID: 506},
		{ID: "b", Date: day("2025-10-15"), Amount: 40, CategoryID: 531},
		{ID: "c", Date: day("2025-10-20"), Amount: 60.25, CategoryID: 588},
		{ID: "r", Date: day("2025-10-21"), Amount: -20, CategoryID: 531},
	}
	w := model.Window{Start: day("2025-10-01"), End: day("2025-10-31")}
	got := SpendSinceLastIncome(txns, taxonomy.Default(), w)
	if !got.Found || got.Date != day("2025-10-15") || got.Amount != 1500 {
		t.Fatalf("unexpected paycheck %+v", got)
	}
	if !approx(got.SpentSince, 100.25) {
		t.Errorf("SpentSince = %v, want 100.25", got.SpentSince)
	}

	none := SpendSinceLastIncome(txns[1:2], taxonomy.Default(), w)
	if none.Found {
		t.Error("expected no paycheck without income")
	}
}
