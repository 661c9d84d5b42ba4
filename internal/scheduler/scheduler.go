// Package scheduler runs the collect, score, record and notify pipeline on
// demand or on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aforti1/clarity-cash/internal/collector"
	"github.com/aforti1/clarity-cash/internal/logger"
	"github.com/aforti1/clarity-cash/internal/model"
	"github.com/aforti1/clarity-cash/internal/notifier"
	"github.com/aforti1/clarity-cash/internal/recorder"
	"github.com/aforti1/clarity-cash/internal/strategy"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Publisher delivers a rendered report.
type Publisher interface {
	PublishWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options tune a Scheduler.
type Options struct {
	WindowDays  int
	MaxRetries  int
	ReportItems int // lowest-scoring transactions listed in a report
}

// Scheduler manages the scoring cron task.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    *strategy.Engine
	Recorder  recorder.Recorder
	Publisher Publisher // nil disables notifications
	Log       zerolog.Logger
	Opts      Options
	Now       func() time.Time

	mu sync.Mutex // serialises runs
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	Record *recorder.RunRecord
	Report string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(col *collector.Collector, eng *strategy.Engine, rec recorder.Recorder, pub Publisher, log zerolog.Logger, opts Options) *Scheduler {
	if opts.WindowDays < 1 {
		opts.WindowDays = 30
	}
	if opts.ReportItems == 0 {
		opts.ReportItems = 5
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Engine:    eng,
		Recorder:  rec,
		Publisher: pub,
		Log:       log,
		Opts:      opts,
		Now:       time.Now,
	}
}

// Register schedules the scoring run on spec (six-field cron with seconds).
func (s *Scheduler) Register(ctx context.Context, spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.scoreTask(ctx) }); err != nil {
		return fmt.Errorf("register scoring task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// CurrentWindow is the trailing window ending today.
func (s *Scheduler) CurrentWindow() model.Window {
	return model.TrailingWindow(civil.DateOf(s.Now()), s.Opts.WindowDays)
}

// RunNow executes the scoring task immediately over CurrentWindow.
func (s *Scheduler) RunNow(ctx context.Context) (*RunResult, error) {
	return s.Run(ctx, s.CurrentWindow())
}

// Run collects, scores, records and publishes one batch for w. Recording
// and publishing failures are logged but do not fail the run.
func (s *Scheduler) Run(ctx context.Context, w model.Window) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()
	log := logger.WithFields(s.Log, map[string]any{
		"run_id": runID,
		"window": w.Start.String() + ".." + w.End.String(),
	})
	ctx = logger.WithContext(ctx, log)

	txns, source, err := s.Collector.Collect(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	batch, err := s.Engine.ScoreBatch(txns, w)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	run := &recorder.RunRecord{
		RunID:    runID,
		Source:   source,
		ScoredAt: s.Now(),
		Batch:    batch,
	}
	log.Info().
		Str("source", source).
		Int("transactions", batch.Summary.TotalTransactions).
		Int("scored", batch.Summary.ScoreableTransactions).
		Float64("average_score", batch.Summary.AverageScore).
		Bool("in_distress", batch.Capacity.InDistress).
		Msg("batch scored")

	if err := s.Recorder.RecordRun(ctx, run); err != nil {
		log.Error().Err(err).Msg("record run")
	}

	report := notifier.FormatReport(batch, s.Opts.ReportItems)
	s.tryPublish(ctx, report)
	return &RunResult{Record: run, Report: report}, nil
}

func (s *Scheduler) scoreTask(ctx context.Context) {
	s.Log.Info().Msg("running scheduled scoring task")
	if _, err := s.RunNow(ctx); err != nil {
		s.Log.Error().Err(err).Msg("scheduled scoring run failed")
		s.tryPublish(ctx, fmt.Sprintf("❌ Scoring run failed: %v", err))
	}
}

func (s *Scheduler) tryPublish(ctx context.Context, text string) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishWithRetry(ctx, text, s.Opts.MaxRetries); err != nil {
		log := logger.FromContext(ctx, s.Log)
		log.Error().Err(err).Msg("publish report")
	}
}
