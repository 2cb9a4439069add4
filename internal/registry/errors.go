package registry

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("registry: not found")

	// ErrQueryFailed is returned when the relational store cannot serve a query.
	ErrQueryFailed = errors.New("registry: query failed")

	// ErrFailedToParseConfig is returned when the DSN cannot be parsed.
	ErrFailedToParseConfig = errors.New("registry: failed to parse connection config")

	// ErrFailedToConnect is returned when no connection could be established.
	ErrFailedToConnect = errors.New("registry: failed to open connection")
)
