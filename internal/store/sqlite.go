package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"dicekit/internal/fair"
)

const (
	busyRetryBase = 10 * time.Millisecond
	busyRetryMax  = 5
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection avoids most
	// SQLITE_BUSY churn and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close flushes the WAL and closes the database connection
func (s *SQLiteDB) Close() error {
	_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return multierr.Combine(err, s.db.Close())
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS rolls (
			id TEXT PRIMARY KEY,
			notation TEXT NOT NULL,
			kind TEXT NOT NULL,
			result INTEGER NOT NULL,
			detail TEXT NOT NULL,
			rolled_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			notation TEXT NOT NULL,
			server_seed TEXT NOT NULL,
			server_seed_hash TEXT NOT NULL,
			client_seed TEXT NOT NULL,
			nonce_start INTEGER NOT NULL,
			nonce_end INTEGER NOT NULL,
			target_op TEXT NOT NULL,
			target_val INTEGER NOT NULL,
			target_val2 INTEGER NOT NULL DEFAULT 0,
			hit_limit INTEGER NOT NULL DEFAULT 0,
			timed_out INTEGER NOT NULL DEFAULT 0,
			hit_count INTEGER NOT NULL DEFAULT 0,
			total_evaluated INTEGER NOT NULL DEFAULT 0,
			min_result INTEGER NOT NULL DEFAULT 0,
			max_result INTEGER NOT NULL DEFAULT 0,
			mean_result TEXT NOT NULL DEFAULT '0',
			hit_rate TEXT NOT NULL DEFAULT '0',
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS hits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			nonce INTEGER NOT NULL,
			result INTEGER NOT NULL,
			detail TEXT,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rolls_rolled_at ON rolls(rolled_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_run_id ON hits(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_hits_run_nonce ON hits(run_id, nonce)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// isBusy reports whether err is a transient SQLite contention error.
func isBusy(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

// withRetry runs op under a fibonacci backoff, retrying only on contention.
func (s *SQLiteDB) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(busyRetryMax, retry.NewFibonacci(busyRetryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if isBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// SaveRoll saves a single evaluated roll to the database
func (s *SQLiteDB) SaveRoll(ctx context.Context, roll *Roll) error {
	if roll.ID == "" {
		roll.ID = uuid.New().String()
	}

	query := `INSERT INTO rolls (id, notation, kind, result, detail) VALUES (?, ?, ?, ?, ?)`

	return s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query,
			roll.ID, roll.Notation, roll.Kind, roll.Result, roll.Detail,
		)
		return err
	})
}

// ListRolls retrieves saved rolls, most recent first, with pagination
func (s *SQLiteDB) ListRolls(ctx context.Context, limit, offset int) ([]Roll, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, notation, kind, result, detail, rolled_at
		FROM rolls
		ORDER BY rolled_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rolls []Roll
	for rows.Next() {
		var roll Roll
		if err := rows.Scan(&roll.ID, &roll.Notation, &roll.Kind, &roll.Result, &roll.Detail, &roll.RolledAt); err != nil {
			return nil, err
		}
		rolls = append(rolls, roll)
	}

	return rolls, rows.Err()
}

// SaveRun saves a scan run to the database
func (s *SQLiteDB) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.ServerSeedHash == "" {
		run.ServerSeedHash = fair.HashSeed(run.ServerSeed)
	}
	if run.MeanResult == "" {
		run.MeanResult = "0"
	}
	if run.HitRate == "" {
		run.HitRate = "0"
	}

	timedOutInt := 0
	if run.TimedOut {
		timedOutInt = 1
	}

	query := `INSERT INTO runs (
		id, notation, server_seed, server_seed_hash, client_seed, nonce_start, nonce_end,
		target_op, target_val, target_val2, hit_limit, timed_out,
		hit_count, total_evaluated, min_result, max_result, mean_result, hit_rate,
		engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, query,
			run.ID, run.Notation, run.ServerSeed, run.ServerSeedHash, run.ClientSeed,
			run.NonceStart, run.NonceEnd, run.TargetOp, run.TargetVal, run.TargetVal2,
			run.HitLimit, timedOutInt, run.HitCount, run.TotalEvaluated,
			run.MinResult, run.MaxResult, run.MeanResult, run.HitRate,
			run.EngineVersion,
		)
		return err
	})
}

// SaveHits saves multiple hits to the database
func (s *SQLiteDB) SaveHits(ctx context.Context, runID string, hits []Hit) error {
	if len(hits) == 0 {
		return nil
	}

	return s.withRetry(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO hits (run_id, nonce, result, detail) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, hit := range hits {
			if _, err := stmt.ExecContext(ctx, runID, hit.Nonce, hit.Result, hit.Detail); err != nil {
				return err
			}
		}

		return tx.Commit()
	})
}

// GetRun retrieves a run by ID
func (s *SQLiteDB) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT id, notation, server_seed, server_seed_hash, client_seed, nonce_start, nonce_end,
		target_op, target_val, target_val2, hit_limit, timed_out,
		hit_count, total_evaluated, min_result, max_result, mean_result, hit_rate,
		engine_version, created_at
		FROM runs WHERE id = ?`

	var run Run
	var timedOutInt int

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Notation, &run.ServerSeed, &run.ServerSeedHash, &run.ClientSeed,
		&run.NonceStart, &run.NonceEnd, &run.TargetOp, &run.TargetVal, &run.TargetVal2,
		&run.HitLimit, &timedOutInt, &run.HitCount, &run.TotalEvaluated,
		&run.MinResult, &run.MaxResult, &run.MeanResult, &run.HitRate,
		&run.EngineVersion, &run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	run.TimedOut = timedOutInt == 1

	return &run, nil
}

// GetHits retrieves hits for a run in nonce order, with pagination
func (s *SQLiteDB) GetHits(ctx context.Context, runID string, limit, offset int) ([]Hit, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, run_id, nonce, result, detail
		FROM hits WHERE run_id = ?
		ORDER BY nonce LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, runID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var hit Hit
		var detail sql.NullString

		if err := rows.Scan(&hit.ID, &hit.RunID, &hit.Nonce, &hit.Result, &detail); err != nil {
			return nil, err
		}

		if detail.Valid {
			hit.Detail = detail.String
		}

		hits = append(hits, hit)
	}

	return hits, rows.Err()
}
