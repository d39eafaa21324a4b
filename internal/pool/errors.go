package pool

import "errors"

// Terminal failures for a single pool operation. Callers match with errors.Is.
var (
	ErrInvalidTickRange  = errors.New("invalid tick range")
	ErrPositionNotFound  = errors.New("position not found")
	ErrPositionInactive  = errors.New("position is not active")
	ErrNoLiquidity       = errors.New("no liquidity available")
	ErrInvalidSwapAmount = errors.New("invalid swap amount")
)
