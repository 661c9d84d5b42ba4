package notifier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aforti1/clarity-cash/internal/model"
)

// FormatReport renders a scored batch as a plain-text report listing at
// most worst of the lowest-scoring transactions.
func FormatReport(b *model.ScoredBatch, worst int) string {
	var sb strings.Builder
	c := b.Capacity
	s := b.Summary

	sb.WriteString(fmt.Sprintf("📊 Clarity Cash report | %s to %s\n\n", b.Window.Start, b.Window.End))

	sb.WriteString(fmt.Sprintf("Income: $%.2f | Necessary: $%.2f\n", c.EffectiveIncome, c.NecessarySpending))
	sb.WriteString(fmt.Sprintf("Safe discretionary: $%.2f (buffer %.1f%%)\n", c.SafeDiscretionary, c.BufferRatio*100))
	sb.WriteString(fmt.Sprintf("Savings rate: %.1f%% | Fees: %.2f%% of income\n", c.SavingsRate*100, c.FeesRatio*100))
	if c.InDistress {
		sb.WriteString("⚠️ Financial distress signals detected")
		if c.HasCashAdvances {
			sb.WriteString(" (cash advance)")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if s.Error != "" {
		sb.WriteString(fmt.Sprintf("%d transactions, %s\n", s.TotalTransactions, s.Error))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Scored %d of %d transactions\n", s.ScoreableTransactions, s.TotalTransactions))
	sb.WriteString(fmt.Sprintf("Average %.2f | Median %.2f | Range %.2f-%.2f | Std %.2f\n\n",
		s.AverageScore, s.MedianScore, s.MinScore, s.MaxScore, s.ScoreStdDev))

	sb.WriteString("Severity:\n")
	for _, tier := range model.SeverityTiers {
		sb.WriteString(fmt.Sprintf("  %-10s %d\n", tier, s.SeverityDistribution[tier]))
	}

	if len(s.ByProfile) > 0 {
		profiles := make([]string, 0, len(s.ByProfile))
		for p := range s.ByProfile {
			profiles = append(profiles, string(p))
		}
		sort.Strings(profiles)
		sb.WriteString("\nBy profile:\n")
		for _, p := range profiles {
			ps := s.ByProfile[model.SpendProfile(p)]
			sb.WriteString(fmt.Sprintf("  %-18s %.2f (%d)\n", p, ps.Mean, ps.Count))
		}
	}

	if s.Paycheck.Found {
		sb.WriteString(fmt.Sprintf("\nSince paycheck on %s ($%.2f): spent $%.2f\n",
			s.Paycheck.Date, s.Paycheck.Amount, s.Paycheck.SpentSince))
	}

	if lows := lowest(b.Results, worst); len(lows) > 0 {
		sb.WriteString("\nLowest scores:\n")
		for _, r := range lows {
			sb.WriteString("  " + FormatResult(r) + "\n")
		}
	}
	return sb.String()
}

// FormatResult renders one result on a single line.
func FormatResult(r model.ScoreResult) string {
	if r.Score == nil {
		return fmt.Sprintf("%s %s $%.2f cat %d: not scored (%s)", r.Date, r.TransactionID, r.Amount, r.CategoryID, r.Reason)
	}
	line := fmt.Sprintf("%s %s $%.2f cat %d: %.2f %s", r.Date, r.TransactionID, r.Amount, r.CategoryID, *r.Score, r.Severity)
	if r.PatternPenalty > 0 {
		line += fmt.Sprintf(" (repeat penalty -%.2f)", r.PatternPenalty)
	}
	if r.Reason != "" {
		line += " - " + r.Reason
	}
	return line
}

func lowest(results []model.ScoreResult, n int) []model.ScoreResult {
	if n <= 0 {
		return nil
	}
	var scored []model.ScoreResult
	for _, r := range results {
		if r.Score != nil {
			scored = append(scored, r)
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return *scored[i].Score < *scored[j].Score })
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}
