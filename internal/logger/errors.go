package logger

import "errors"

var (
	// ErrInvalidLevel is returned when the configured log level is not recognized.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrInvalidFormat is returned when the configured log format is not "json" or "text".
	ErrInvalidFormat = errors.New("invalid log format")
)
