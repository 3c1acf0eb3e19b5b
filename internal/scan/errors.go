package scan

import "errors"

var (
	ErrInvalidRange = errors.New("invalid nonce range")
	ErrUnknownOp    = errors.New("unknown target operation")
	ErrTimeout      = errors.New("scan timed out")
)
