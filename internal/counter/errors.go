package counter

import "errors"

var (
	// ErrUnavailable is returned when the counter backend cannot serve the operation.
	ErrUnavailable = errors.New("counter store unavailable")

	// ErrInvalidURL is returned when the counter-store connection string cannot be parsed.
	ErrInvalidURL = errors.New("failed to parse counter store URL")

	// ErrNotReady is returned when the counter store did not become ready within the probe budget.
	ErrNotReady = errors.New("counter store did not become ready within the given time period")
)
