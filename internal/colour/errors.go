package colour

import "errors"

var (
	// ErrInvalidInput is returned when a request is rejected before any work starts:
	// missing pixels, a bad palette size, an unknown character or harmony name.
	ErrInvalidInput = errors.New("invalid input")

	// ErrResourceExhausted is returned when an image exceeds the configured pixel budget.
	ErrResourceExhausted = errors.New("resource exhausted")
)
