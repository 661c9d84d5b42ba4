package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aforti1/clarity-cash/internal/logger"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scoring_runs (
			run_id             TEXT PRIMARY KEY,
			scored_at          INTEGER NOT NULL,
			source             TEXT,
			window_start       TEXT NOT NULL,
			window_end         TEXT NOT NULL,
			effective_income   REAL,
			necessary_spend    REAL,
			safe_discretionary REAL,
			buffer_ratio       REAL,
			fees_ratio         REAL,
			has_cash_advance   INTEGER,
			in_distress        INTEGER,
			total_count        INTEGER,
			scoreable_count    INTEGER,
			average_score      REAL,
			median_score       REAL,
			min_score          REAL,
			max_score          REAL,
			score_std          REAL,
			summary_error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_scored_at ON scoring_runs(scored_at)`,

		`CREATE TABLE IF NOT EXISTS profile_scores (
			run_id  TEXT NOT NULL,
			profile TEXT NOT NULL,
			mean    REAL,
			count   INTEGER,
			PRIMARY KEY (run_id, profile)
		)`,

		`CREATE TABLE IF NOT EXISTS scored_transactions (
			run_id          TEXT NOT NULL,
			transaction_id  TEXT NOT NULL,
			date            TEXT NOT NULL,
			amount          REAL,
			category_id     INTEGER,
			profile         TEXT,
			score           REAL,
			base_score      REAL,
			pattern_penalty REAL,
			severity        TEXT,
			reason          TEXT,
			PRIMARY KEY (run_id, transaction_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scored_date ON scored_transactions(date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run summary, per-profile means and every result in
// one database transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, run *RunRecord) error {
	if run == nil || run.Batch == nil {
		return errors.New("record run: empty run")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b := run.Batch
	c := b.Capacity
	s := b.Summary

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO scoring_runs
		(run_id, scored_at, source, window_start, window_end,
		 effective_income, necessary_spend, safe_discretionary, buffer_ratio, fees_ratio,
		 has_cash_advance, in_distress,
		 total_count, scoreable_count, average_score, median_score, min_score, max_score, score_std,
		 summary_error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.RunID, run.ScoredAt.Unix(), run.Source, b.Window.Start.String(), b.Window.End.String(),
		c.EffectiveIncome, c.NecessarySpending, c.SafeDiscretionary, c.BufferRatio, c.FeesRatio,
		c.HasCashAdvances, c.InDistress,
		s.TotalTransactions, s.ScoreableTransactions, s.AverageScore, s.MedianScore, s.MinScore, s.MaxScore, s.ScoreStdDev,
		s.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for profile, ps := range s.ByProfile {
		if _, err := tx.ExecContext(ctx, `INSERT INTO profile_scores (run_id, profile, mean, count) VALUES (?,?,?,?)`,
			run.RunID, string(profile), ps.Mean, ps.Count); err != nil {
			return fmt.Errorf("insert profile %s: %w", profile, err)
		}
	}

	for _, res := range b.Results {
		var score sql.NullFloat64
		if res.Score != nil {
			score = sql.NullFloat64{Float64: *res.Score, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO scored_transactions
			(run_id, transaction_id, date, amount, category_id, profile, score, base_score, pattern_penalty, severity, reason)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			run.RunID, res.TransactionID, res.Date.String(), res.Amount, res.CategoryID, string(res.Profile),
			score, res.BaseScore, res.PatternPenalty, string(res.Severity), res.Reason,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log := logger.FromContext(ctx, r.log)
	log.Debug().Str("run_id", run.RunID).Int("results", len(b.Results)).Msg("run recorded")
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
			run_id, source, scored_at, window_start, window_end,
			effective_income, safe_discretionary, in_distress,
			total_count, scoreable_count, average_score
		FROM scoring_runs ORDER BY scored_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rs         RunSummary
			scoredAt   int64
			start, end string
		)
		if err := rows.Scan(&rs.RunID, &rs.Source, &scoredAt, &start, &end,
			&rs.EffectiveIncome, &rs.SafeDiscretionary, &rs.InDistress,
			&rs.Total, &rs.Scoreable, &rs.AverageScore); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.ScoredAt = time.Unix(scoredAt, 0)
		if rs.WindowStart, err = civil.ParseDate(start); err != nil {
			return nil, fmt.Errorf("run %s window start: %w", rs.RunID, err)
		}
		if rs.WindowEnd, err = civil.ParseDate(end); err != nil {
			return nil, fmt.Errorf("run %s window end: %w", rs.RunID, err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
