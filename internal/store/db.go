// Package store persists rolls and scan runs in SQLite.
package store

import (
	"context"
	"time"
)

// DB represents the database interface
type DB interface {
	Close() error
	Migrate(ctx context.Context) error
	SaveRoll(ctx context.Context, roll *Roll) error
	ListRolls(ctx context.Context, limit, offset int) ([]Roll, error)
	SaveRun(ctx context.Context, run *Run) error
	SaveHits(ctx context.Context, runID string, hits []Hit) error
	GetRun(ctx context.Context, id string) (*Run, error)
	GetHits(ctx context.Context, runID string, limit, offset int) ([]Hit, error)
}

// Roll represents a single evaluated notation
type Roll struct {
	ID       string    `json:"id" db:"id"`
	Notation string    `json:"notation" db:"notation"`
	Kind     string    `json:"kind" db:"kind"`
	Result   int64     `json:"result" db:"result"`
	Detail   string    `json:"detail" db:"detail"`
	RolledAt time.Time `json:"rolled_at" db:"rolled_at"`
}

// Run represents a completed scan run
type Run struct {
	ID             string    `json:"id" db:"id"`
	Notation       string    `json:"notation" db:"notation"`
	ServerSeed     string    `json:"server_seed" db:"server_seed"`
	ServerSeedHash string    `json:"server_seed_hash" db:"server_seed_hash"`
	ClientSeed     string    `json:"client_seed" db:"client_seed"`
	NonceStart     uint64    `json:"nonce_start" db:"nonce_start"`
	NonceEnd       uint64    `json:"nonce_end" db:"nonce_end"`
	TargetOp       string    `json:"target_op" db:"target_op"`
	TargetVal      int64     `json:"target_val" db:"target_val"`
	TargetVal2     int64     `json:"target_val2" db:"target_val2"`
	HitLimit       int       `json:"hit_limit" db:"hit_limit"`
	TimedOut       bool      `json:"timed_out" db:"timed_out"`
	HitCount       int       `json:"hit_count" db:"hit_count"`
	TotalEvaluated uint64    `json:"total_evaluated" db:"total_evaluated"`
	MinResult      int64     `json:"min_result" db:"min_result"`
	MaxResult      int64     `json:"max_result" db:"max_result"`
	MeanResult     string    `json:"mean_result" db:"mean_result"`
	HitRate        string    `json:"hit_rate" db:"hit_rate"`
	EngineVersion  string    `json:"engine_version" db:"engine_version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Hit represents a single matching nonce within a run
type Hit struct {
	ID     int64  `json:"id" db:"id"`
	RunID  string `json:"run_id" db:"run_id"`
	Nonce  uint64 `json:"nonce" db:"nonce"`
	Result int64  `json:"result" db:"result"`
	Detail string `json:"detail" db:"detail"`
}
