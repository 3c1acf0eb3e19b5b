package api

import (
	"dicekit/internal/dice"
	"dicekit/internal/scan"
	"dicekit/internal/store"
)

// APIError represents a structured error response with context
type APIError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e APIError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeValidation = "validation_error"

	// Notation errors carrying the interpreter's message-template key
	ErrTypeSyntax = "syntax_error"
	ErrTypeValue  = "value_error"

	// Resource errors
	ErrTypeNotFound = "not_found"

	// System errors
	ErrTypeTimeout  = "timeout"
	ErrTypeInternal = "internal_error"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNotation   ErrorCategory = "notation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryTimeout    ErrorCategory = "timeout"
	CategorySystem     ErrorCategory = "system"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation:
		return CategoryValidation
	case ErrTypeSyntax, ErrTypeValue:
		return CategoryNotation
	case ErrTypeNotFound:
		return CategoryNotFound
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// RollRequest represents a live roll request. A seed switches evaluation to
// the reproducible seeded source; without one the roll draws from crypto/rand.
type RollRequest struct {
	Notation string `json:"notation"`
	Seed     *int64 `json:"seed,omitempty"`
}

// RollResponse represents a persisted live roll
type RollResponse struct {
	ID            string `json:"id"`
	Notation      string `json:"notation"`
	Kind          string `json:"kind"`
	Result        int64  `json:"result"`
	Detail        string `json:"detail"`
	EngineVersion string `json:"engine_version"`
}

// VerifyRequest represents a single nonce verification request
type VerifyRequest struct {
	Notation   string `json:"notation"`
	ServerSeed string `json:"server_seed"`
	ClientSeed string `json:"client_seed"`
	Nonce      uint64 `json:"nonce"`
}

// VerifyResponse represents a single nonce verification response
type VerifyResponse struct {
	Nonce         uint64        `json:"nonce"`
	Kind          string        `json:"kind"`
	Result        int64         `json:"result"`
	Detail        string        `json:"detail"`
	EngineVersion string        `json:"engine_version"`
	Echo          VerifyRequest `json:"echo"`
}

// ScanRequest represents a scan operation request
type ScanRequest struct {
	Notation   string `json:"notation"`
	ServerSeed string `json:"server_seed"`
	ClientSeed string `json:"client_seed"`
	NonceStart uint64 `json:"nonce_start"`
	NonceEnd   uint64 `json:"nonce_end"`
	TargetOp   string `json:"target_op"` // "eq", "gt", "ge", "lt", "le", "between", "outside"
	TargetVal  int64  `json:"target_val"`
	TargetVal2 int64  `json:"target_val2,omitempty"` // for "between" and "outside"
	Limit      int    `json:"limit,omitempty"`
	TimeoutMs  int    `json:"timeout_ms,omitempty"`
}

// ScanResponse represents the complete scan response
type ScanResponse struct {
	RunID         string       `json:"run_id"`
	Hits          []scan.Hit   `json:"hits"`
	Summary       scan.Summary `json:"summary"`
	EngineVersion string       `json:"engine_version"`
	Echo          ScanRequest  `json:"echo"`
}

// VariantsResponse represents the supported notation grammars
type VariantsResponse struct {
	Variants      []dice.VariantInfo `json:"variants"`
	EngineVersion string             `json:"engine_version"`
}

// RollsResponse represents a page of persisted rolls
type RollsResponse struct {
	Rolls         []store.Roll `json:"rolls"`
	EngineVersion string       `json:"engine_version"`
}

// RunResponse represents a persisted scan run
type RunResponse struct {
	Run           *store.Run `json:"run"`
	EngineVersion string     `json:"engine_version"`
}

// RunHitsResponse represents a page of persisted hits for a run
type RunHitsResponse struct {
	RunID         string      `json:"run_id"`
	Hits          []store.Hit `json:"hits"`
	EngineVersion string      `json:"engine_version"`
}

// SeedHashRequest represents a seed hashing request
type SeedHashRequest struct {
	ServerSeed string `json:"server_seed"`
}

// SeedHashResponse represents a seed hashing response
type SeedHashResponse struct {
	Hash          string          `json:"hash"`
	EngineVersion string          `json:"engine_version"`
	Echo          SeedHashRequest `json:"echo"`
}
