// Package store persists batch run history to a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/resolver"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	documents   INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id          TEXT NOT NULL REFERENCES runs(id),
	source_file     TEXT NOT NULL,
	config_name     TEXT NOT NULL,
	extracted_value TEXT NOT NULL,
	status          TEXT NOT NULL,
	success         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
`

// RunRecord is one persisted batch run.
type RunRecord struct {
	ID        uuid.UUID
	StartedAt time.Time
	Elapsed   time.Duration
	Documents int
	Succeeded int
	Failed    int
}

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the history database and ensures the schema exists.
// Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening history database", "path", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// SaveRun records a run and its rows in one transaction.
func (s *Store) SaveRun(ctx context.Context, run RunRecord, rows []resolver.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, elapsed_ms, documents, succeeded, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.StartedAt.UTC(), run.Elapsed.Milliseconds(), run.Documents, run.Succeeded, run.Failed)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, source_file, config_name, extracted_value, status, success) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, run.ID.String(), r.SourceID, r.ConfigName, r.Value, string(r.Status), r.Success); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("store.run.saved", "run_id", run.ID.String(), "rows", len(rows))
	return nil
}

// GetRun looks a run up by ID.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (RunRecord, error) {
	var rec RunRecord
	var idStr string
	var elapsedMS int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, elapsed_ms, documents, succeeded, failed FROM runs WHERE id = ?`,
		id.String()).Scan(&idStr, &rec.StartedAt, &elapsedMS, &rec.Documents, &rec.Succeeded, &rec.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, common.NotFoundErrorf("run %s not found", id)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("query run: %w", err)
	}
	rec.ID, err = uuid.Parse(idStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parse run id: %w", err)
	}
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, elapsed_ms, documents, succeeded, failed FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var idStr string
		var elapsedMS int64
		if err := rows.Scan(&idStr, &rec.StartedAt, &elapsedMS, &rec.Documents, &rec.Succeeded, &rec.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ResultsForRun returns the stored rows for a run, in insertion order.
func (s *Store) ResultsForRun(ctx context.Context, id uuid.UUID) ([]resolver.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_file, config_name, extracted_value, status, success FROM results WHERE run_id = ? ORDER BY rowid`,
		id.String())
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []resolver.Result
	for rows.Next() {
		var r resolver.Result
		var status string
		if err := rows.Scan(&r.SourceID, &r.ConfigName, &r.Value, &status, &r.Success); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Status = statusFromString(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func statusFromString(s string) constants.ResultStatus {
	switch constants.ResultStatus(s) {
	case constants.StatusSuccess, constants.StatusNoMatch, constants.StatusReadError:
		return constants.ResultStatus(s)
	default:
		return constants.StatusNoMatch
	}
}

// HealthCheck pings the database to catch path or locking issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.db.PingContext(ctx); err != nil {
		return common.InternalError(fmt.Sprintf("history database unreachable: %v", err))
	}
	return nil
}

// Close closes the database gracefully.
func (s *Store) Close() error {
	s.logger.Info("closing history database")
	return s.db.Close()
}
