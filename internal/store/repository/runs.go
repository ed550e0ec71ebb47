package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/switchboard-xyz/switchboard-feed-factory/internal/factory"
	"github.com/switchboard-xyz/switchboard-feed-factory/internal/store"
)

// RunRepository records batch runs and their per-feed results.
type RunRepository struct {
	db *store.Database
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *store.Database) *RunRepository {
	return &RunRepository{db: db}
}

// RunRecord is one batch run's stored summary.
type RunRecord struct {
	RunID        string
	Sport        string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	CreatedCount int
	ErrorCount   int
}

// StartRun records the beginning of a batch run.
func (r *RunRepository) StartRun(ctx context.Context, runID, sport string, startedAt time.Time) error {
	query := `
		INSERT INTO factory_runs (run_id, sport, started_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.DB().ExecContext(ctx, query, runID, sport, startedAt); err != nil {
		return fmt.Errorf("inserting run %s: %w", runID, err)
	}
	return nil
}

// FinishRun records the run's end and its per-feed results.
func (r *RunRepository) FinishRun(ctx context.Context, runID string, results []*factory.Result) error {
	createdCount, errorCount := 0, 0
	for _, res := range results {
		if res.Created && res.Err == nil {
			createdCount++
		}
		if res.Err != nil {
			errorCount++
		}
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning run transaction: %w", err)
	}
	defer tx.Rollback()

	const resultQuery = `
		INSERT INTO feed_results
			(run_id, name, sport, state, created, verified, feed_pubkey, update_auth_pubkey, job_count, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, res := range results {
		var errMsg sql.NullString
		if res.Err != nil {
			errMsg = sql.NullString{String: res.Err.Error(), Valid: true}
		}
		_, err := tx.ExecContext(ctx, resultQuery,
			runID, res.Input.Name, res.Input.Sport, string(res.State),
			res.Created, res.Verified,
			nullable(res.Feed.PublicKey), nullable(res.Authority.PublicKey),
			len(res.Jobs), errMsg,
		)
		if err != nil {
			return fmt.Errorf("inserting result %s: %w", res.Input.Name, err)
		}
	}

	const runQuery = `
		UPDATE factory_runs
		SET finished_at = NOW(), created_count = $2, error_count = $3
		WHERE run_id = $1
	`
	if _, err := tx.ExecContext(ctx, runQuery, runID, createdCount, errorCount); err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	return tx.Commit()
}

// LatestRun returns the most recently started run, or nil when none exist.
func (r *RunRepository) LatestRun(ctx context.Context) (*RunRecord, error) {
	query := `
		SELECT run_id, sport, started_at, finished_at, created_count, error_count
		FROM factory_runs
		ORDER BY started_at DESC
		LIMIT 1
	`
	rec := &RunRecord{}
	err := r.db.DB().QueryRowContext(ctx, query).Scan(
		&rec.RunID, &rec.Sport, &rec.StartedAt, &rec.FinishedAt,
		&rec.CreatedCount, &rec.ErrorCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}
	return rec, nil
}

// FeedResultRecord is one stored per-feed outcome.
type FeedResultRecord struct {
	Name       string
	Sport      string
	State      string
	Created    bool
	Verified   bool
	FeedPubKey sql.NullString
	JobCount   int
	Error      sql.NullString
}

// ResultsForRun lists a run's per-feed results.
func (r *RunRepository) ResultsForRun(ctx context.Context, runID string) ([]FeedResultRecord, error) {
	query := `
		SELECT name, sport, state, created, verified, feed_pubkey, job_count, error
		FROM feed_results
		WHERE run_id = $1
		ORDER BY result_id
	`
	rows, err := r.db.DB().QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []FeedResultRecord
	for rows.Next() {
		var rec FeedResultRecord
		if err := rows.Scan(&rec.Name, &rec.Sport, &rec.State, &rec.Created, &rec.Verified,
			&rec.FeedPubKey, &rec.JobCount, &rec.Error); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
