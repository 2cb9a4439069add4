package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the process-wide logger.
type Config struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`   // Level is one of debug, info, warn, error.
	Format  string `env:"LOG_FORMAT" envDefault:"json"`  // Format is "json" for aggregation systems or "text" for development.
	Service string `env:"LOG_SERVICE" envDefault:"gateway"` // Service is attached to every record as the "service" attribute.
}

// Option configures logger creation beyond what Config carries.
type Option func(*settings)

type settings struct {
	output io.Writer
	attrs  []slog.Attr
}

// WithOutput sets a custom output destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.output = w
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(s *settings) {
		s.attrs = append(s.attrs, attrs...)
	}
}

// New creates a configured slog.Logger. Invalid level or format values fail
// fast so misconfiguration prevents startup instead of producing silent logs.
func New(cfg Config, opts ...Option) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	s := &settings{output: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(s.output, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(s.output, handlerOpts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, cfg.Format)
	}

	attrs := s.attrs
	if cfg.Service != "" {
		attrs = append(attrs, slog.String("service", cfg.Service))
	}
	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return slog.New(handler), nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
}
