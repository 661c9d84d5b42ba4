package strategy

import "github.com/aforti1/clarity-cash/internal/model"

// SeverityTiers maps a minimum score to its tier, checked top-down.
var SeverityTiers = []struct {
	MinScore float64
	Tier     model.SeverityTier
}{
	{90, model.SeverityVeryLow},
	{70, model.SeverityLow},
	{50, model.SeverityModerate},
	{30, model.SeverityHigh},
}

// ClassifySeverity maps a 0-100 score to a severity tier.
func ClassifySeverity(score float64) model.SeverityTier {
	for _, t := range SeverityTiers {
		if score >= t.MinScore {
			return t.Tier
		}
	}
	return model.SeverityVeryHigh
}
