package strategy

import (
	"errors"
	"fmt"

	"github.com/aforti1/clarity-cash/internal/calculator"
)

// DiscretionaryParams tune the discretionary-want scorer.
type DiscretionaryParams struct {
	Mid                float64 `yaml:"mid"`
	Power              float64 `yaml:"power"`
	NoBudgetScore      float64 `yaml:"no_budget_score"`
	HarmfulShareWeight float64 `yaml:"harmful_share_weight"`
	HarmfulMaxCut      float64 `yaml:"harmful_max_cut"`
	HarmfulFloor       float64 `yaml:"harmful_floor"`
	NeutralShareWeight float64 `yaml:"neutral_share_weight"`
	NeutralMaxCut      float64 `yaml:"neutral_max_cut"`
	DistressCut        float64 `yaml:"distress_cut"`
	DistressIndexCap   float64 `yaml:"distress_index_cap"`
	CashAdvanceWeight  float64 `yaml:"cash_advance_weight"`
}

// SavingsParams tune the savings-positive scorer.
type SavingsParams struct {
	LookbackDays      int     `yaml:"lookback_days"`
	Width             float64 `yaml:"width"`
	DistressCut       float64 `yaml:"distress_cut"`
	CashAdvanceWeight float64 `yaml:"cash_advance_weight"`
}

// FlexParams tune the flex-essential scorer.
type FlexParams struct {
	SweetSpot      float64 `yaml:"sweet_spot"`
	DistressFactor float64 `yaml:"distress_factor"`
}

// NegativeParams tune the negative-event scorer.
type NegativeParams struct {
	Exponent       float64 `yaml:"exponent"`
	DistressFactor float64 `yaml:"distress_factor"`
}

// PatternParams tune the repeat-purchase penalty.
type PatternParams struct {
	FreeOccurrences int     `yaml:"free_occurrences"`
	MaxPenalty      float64 `yaml:"max_penalty"`
	Rate            float64 `yaml:"rate"`
}

// Params is the full, immutable scoring configuration.
type Params struct {
	Capacity      calculator.Params   `yaml:"capacity"`
	Discretionary DiscretionaryParams `yaml:"discretionary"`
	Savings       SavingsParams       `yaml:"savings"`
	Flex          FlexParams          `yaml:"flex"`
	Negative      NegativeParams      `yaml:"negative"`
	Pattern       PatternParams       `yaml:"pattern"`
	NeutralScore  float64             `yaml:"neutral_score"`
}

// DefaultParams returns the standard scoring constants.
func DefaultParams() Params {
	return Params{
		Capacity: calculator.DefaultParams(),
		Discretionary: DiscretionaryParams{
			Mid:                0.25,
			Power:              1.4,
			NoBudgetScore:      5,
			HarmfulShareWeight: 2,
			HarmfulMaxCut:      0.5,
			HarmfulFloor:       0.4,
			NeutralShareWeight: 0.5,
			NeutralMaxCut:      0.15,
			DistressCut:        0.25,
			DistressIndexCap:   1.2,
			CashAdvanceWeight:  2,
		},
		Savings: SavingsParams{
			LookbackDays:      30,
			Width:             0.6,
			DistressCut:       0.7,
			CashAdvanceWeight: 2.5,
		},
		Flex: FlexParams{
			SweetSpot:      0.15,
			DistressFactor: 0.9,
		},
		Negative: NegativeParams{
			Exponent:       0.8,
			DistressFactor: 0.7,
		},
		Pattern: PatternParams{
			FreeOccurrences: 3,
			MaxPenalty:      20,
			Rate:            0.3,
		},
		NeutralScore: 50,
	}
}

// Validate rejects parameters that would divide by zero or invert a curve.
func (p Params) Validate() error {
	if err := p.Capacity.Validate(); err != nil {
		return fmt.Errorf("capacity: %w", err)
	}
	switch {
	case p.Discretionary.Mid <= 0:
		return errors.New("discretionary.mid must be positive")
	case p.Discretionary.Power <= 0:
		return errors.New("discretionary.power must be positive")
	case p.Savings.Width <= 0:
		return errors.New("savings.width must be positive")
	case p.Savings.LookbackDays < 0:
		return errors.New("savings.lookback_days must not be negative")
	case p.Flex.SweetSpot <= 0:
		return errors.New("flex.sweet_spot must be positive")
	case p.Negative.Exponent <= 0:
		return errors.New("negative.exponent must be positive")
	case p.Pattern.FreeOccurrences < 0:
		return errors.New("pattern.free_occurrences must not be negative")
	case p.Pattern.MaxPenalty < 0 || p.Pattern.Rate <= 0:
		return errors.New("pattern.max_penalty must be >= 0 and pattern.rate > 0")
	case p.NeutralScore < 0 || p.NeutralScore > 100:
		return errors.New("neutral_score must be in [0, 100]")
	}
	return nil
}
