package httpserver

import "errors"

var (
	// ErrStart indicates the listener could not start or failed while serving.
	ErrStart = errors.New("failed to start http server")
	// ErrShutdown indicates graceful shutdown did not complete in time.
	ErrShutdown = errors.New("failed to shutdown http server")
)
