package readiness

import "errors"

var (
	// ErrTimeoutExceeded is returned when the attempt budget is exhausted.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrInvalidBudget is returned when maxAttempts or interval cannot bound the wait.
	ErrInvalidBudget = errors.New("readiness budget must have at least one attempt and a non-negative interval")
)
