package quota

import "errors"

var (
	// ErrMinuteExceeded is returned when the subject exhausted its per-minute window.
	ErrMinuteExceeded = errors.New("rate limit exceeded")

	// ErrMonthExceeded is returned when the subject exhausted its monthly cap.
	ErrMonthExceeded = errors.New("monthly rate limit exceeded")
)
