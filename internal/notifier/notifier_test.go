package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aforti1/clarity-cash/internal/model"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
)

func f(v float64) *float64 { return &v }

func reportBatch() *model.ScoredBatch {
	return &model.ScoredBatch{
		Window: model.Window{
			Start: civil.Date{Year: 2025, Month: 10, Day: 1},
			End:   civil.Date{Year: 2025, Month: 10, Day: 31},
		},
		Capacity: model.FinancialCapacity{
			EffectiveIncome:   3000,
			SafeDiscretionary: 2550,
			InDistress:        true,
			HasCashAdvances:   true,
		},
		Results: []model.ScoreResult{
			{TransactionID: "dinner", Amount: 75, CategoryID: 531, Score: f(85.12), IsScored: true, Severity: model.SeverityLow},
			{TransactionID: "fee", Amount: 35, CategoryID: 525, Score: f(25.4), IsScored: true, Severity: model.SeverityVeryHigh},
			{TransactionID: "bar", Amount: 30, CategoryID: 533, Score: f(61), IsScored: true, Severity: model.SeverityModerate, PatternPenalty: 5.18},
			{TransactionID: "pay", Amount: -3000, CategoryID: 506, Reason: "category not scoreable"},
		},
		Summary: model.BatchSummary{
			TotalTransactions:     4,
			ScoreableTransactions: 3,
			AverageScore:          57.17,
			SeverityDistribution: map[model.SeverityTier]int{
				model.SeverityLow: 1, model.SeverityModerate: 1, model.SeverityVeryHigh: 1,
			},
			ByProfile: map[model.SpendProfile]model.ProfileStats{
				model.ProfileDiscretionaryWant: {Mean: 73.06, Count: 2},
				model.ProfileNegativeEvent:     {Mean: 25.4, Count: 1},
			},
			Paycheck: model.PaycheckSpend{Found: true, Date: civil.Date{Year: 2025, Month: 10, Day: 1}, Amount: 3000, SpentSince: 140},
		},
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(reportBatch(), 2)

	for _, want := range []string{
		"2025-10-01 to 2025-10-31",
		"Safe discretionary: $2550.00",
		"distress",
		"cash advance",
		"Scored 3 of 4",
		"very_high",
		"DISCRETIONARY_WANT",
		"spent $140.00",
		"fee",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	lows := out[strings.Index(out, "Lowest scores:"):]
	if strings.Contains(lows, "dinner") {
		t.Errorf("expected only the two lowest scores, got:\n%s", lows)
	}
	if strings.Index(lows, "fee") > strings.Index(lows, "bar") {
		t.Errorf("expected lowest score first, got:\n%s", lows)
	}
}

func TestFormatReport_NothingScored(t *testing.T) {
	b := reportBatch()
	b.Summary = model.BatchSummary{TotalTransactions: 1, Error: "no scoreable transactions"}
	out := FormatReport(b, 5)
	if !strings.Contains(out, "no scoreable transactions") {
		t.Errorf("expected summary error in report:\n%s", out)
	}
	if strings.Contains(out, "Lowest scores") {
		t.Errorf("unexpected lowest section:\n%s", out)
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		in   model.ScoreResult
		want string
	}{
		{"unscored", model.ScoreResult{TransactionID: "p", Reason: "category 9 not found in taxonomy"}, "not scored (category 9 not found in taxonomy)"},
		{"penalty", model.ScoreResult{TransactionID: "b", Score: f(61), Severity: model.SeverityModerate, PatternPenalty: 5.18}, "61.00 moderate (repeat penalty -5.18)"},
		{"reason", model.ScoreResult{TransactionID: "s", Score: f(50), Severity: model.SeverityModerate, Reason: "no income observed in window"}, "- no income observed in window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResult(tt.in); !strings.Contains(got, tt.want) {
				t.Errorf("FormatResult() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestWebhookPublisher_Publish(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "", zerolog.Nop())
	if err := p.Publish(context.Background(), "hello"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got["text"] != "hello" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestWebhookPublisher_RetryThenSucceed(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "", zerolog.Nop())
	p.Backoff = time.Millisecond
	if err := p.PublishWithRetry(context.Background(), "report", 3); err != nil {
		t.Fatalf("PublishWithRetry: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWebhookPublisher_RetryExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewWebhookPublisher(srv.URL, "", zerolog.Nop())
	p.Backoff = time.Millisecond
	if err := p.PublishWithRetry(context.Background(), "report", 2); err == nil {
		t.Fatal("expected error after retries")
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestWebhookPublisher_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewWebhookPublisher(srv.URL, "", zerolog.Nop())
	p.Backoff = time.Hour
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := p.PublishWithRetry(ctx, "report", 5); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
