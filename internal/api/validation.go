package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"dicekit/internal/scan"
)

const (
	maxNotationBytes = 100
	maxNonceRange    = 10_000_000 // 10M nonces max
	maxScanLimit     = 100_000
	maxScanTimeoutMs = 300_000 // 5 minutes
)

var validTargetOps = []string{"eq", "gt", "ge", "lt", "le", "between", "outside"}

// validateNotation enforces the shared notation constraints
func validateNotation(notation string) error {
	if strings.TrimSpace(notation) == "" {
		return fmt.Errorf("notation is required")
	}
	if len(notation) > maxNotationBytes {
		return fmt.Errorf("notation too long (max %d bytes)", maxNotationBytes)
	}
	return nil
}

// ValidateRollRequest validates a roll request
func ValidateRollRequest(req *RollRequest) error {
	return validateNotation(req.Notation)
}

// ValidateVerifyRequest validates a verify request
func ValidateVerifyRequest(req *VerifyRequest) error {
	if err := validateNotation(req.Notation); err != nil {
		return err
	}
	if req.ServerSeed == "" {
		return fmt.Errorf("server_seed is required")
	}
	if req.ClientSeed == "" {
		return fmt.Errorf("client_seed is required")
	}
	return nil
}

// ValidateScanRequest validates a scan request and returns any validation errors
func ValidateScanRequest(req *ScanRequest) error {
	if err := validateNotation(req.Notation); err != nil {
		return err
	}

	// Validate seeds
	if req.ServerSeed == "" {
		return fmt.Errorf("server_seed is required")
	}
	if req.ClientSeed == "" {
		return fmt.Errorf("client_seed is required")
	}

	// Validate nonce range
	if req.NonceEnd < req.NonceStart {
		return fmt.Errorf("nonce_end (%d) must be >= nonce_start (%d)", req.NonceEnd, req.NonceStart)
	}

	// Validate nonce range size (prevent excessive ranges)
	if req.NonceEnd-req.NonceStart > maxNonceRange {
		return fmt.Errorf("nonce range too large (max %d nonces)", maxNonceRange)
	}

	// Validate target operation
	if req.TargetOp == "" {
		return fmt.Errorf("target_op is required")
	}
	validOp := false
	for _, op := range validTargetOps {
		if req.TargetOp == op {
			validOp = true
			break
		}
	}
	if !validOp {
		return fmt.Errorf("target_op must be one of: %s", strings.Join(validTargetOps, ", "))
	}

	// Validate target values for range operations
	if req.TargetOp == "between" || req.TargetOp == "outside" {
		if req.TargetVal > req.TargetVal2 {
			return fmt.Errorf("target_val must be <= target_val2 for '%s' operation", req.TargetOp)
		}
	}

	// Validate limits
	if req.Limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}
	if req.Limit > maxScanLimit {
		return fmt.Errorf("limit too large (max %d)", maxScanLimit)
	}

	// Validate timeout
	if req.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must be >= 0")
	}
	if req.TimeoutMs > maxScanTimeoutMs {
		return fmt.Errorf("timeout_ms too large (max %d ms)", maxScanTimeoutMs)
	}

	return nil
}

// ValidateSeedHashRequest validates a seed hash request
func ValidateSeedHashRequest(req *SeedHashRequest) error {
	if req.ServerSeed == "" {
		return fmt.Errorf("server_seed is required")
	}
	return nil
}

// convertToScanRequest converts an API ScanRequest to an internal scan.Request
func convertToScanRequest(apiReq *ScanRequest) scan.Request {
	return scan.Request{
		Notation:   apiReq.Notation,
		ServerSeed: apiReq.ServerSeed,
		ClientSeed: apiReq.ClientSeed,
		NonceStart: apiReq.NonceStart,
		NonceEnd:   apiReq.NonceEnd,
		TargetOp:   scan.TargetOp(apiReq.TargetOp),
		TargetVal:  apiReq.TargetVal,
		TargetVal2: apiReq.TargetVal2,
		Limit:      apiReq.Limit,
		TimeoutMs:  apiReq.TimeoutMs,
	}
}

// parsePagination reads limit/offset query parameters with bounds
func parsePagination(r *http.Request, defaultLimit, maxLimit int) (int, int, error) {
	limit := defaultLimit
	offset := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("limit must be a positive integer")
		}
		if n > maxLimit {
			return 0, 0, fmt.Errorf("limit too large (max %d)", maxLimit)
		}
		limit = n
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("offset must be a non-negative integer")
		}
		offset = n
	}

	return limit, offset, nil
}
