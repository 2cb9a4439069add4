// Package logger builds the process-wide slog.Logger from environment-driven
// configuration: JSON or text handler, level, and a static service attribute
// attached to every record.
package logger
