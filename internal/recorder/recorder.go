// Package recorder keeps a history of scoring runs.
package recorder

import (
	"context"
	"time"

	"github.com/aforti1/clarity-cash/internal/model"

	"cloud.google.com/go/civil"
)

// RunRecord is one completed scoring run.
type RunRecord struct {
	RunID    string
	Source   string
	ScoredAt time.Time
	Batch    *model.ScoredBatch
}

// RunSummary is the stored headline of a run, as read back by ListRuns.
type RunSummary struct {
	RunID             string
	Source            string
	ScoredAt          time.Time
	WindowStart       civil.Date
	WindowEnd         civil.Date
	EffectiveIncome   float64
	SafeDiscretionary float64
	InDistress        bool
	Total             int
	Scoreable         int
	AverageScore      float64
}

// Recorder persists scoring runs for later analysis.
type Recorder interface {
	RecordRun(ctx context.Context, run *RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}
