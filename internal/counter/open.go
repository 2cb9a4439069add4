package counter

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/dmitrymomot/gatekit/internal/logger"
)

// Open selects the counter backend for the process: the remote store when it
// answers the startup probe, the in-process fallback otherwise. Fallback is a
// fail-open for counter availability only; quotas still apply, they are just
// not shared across replicas.
func Open(ctx context.Context, cfg Config, log *slog.Logger) Store {
	client, err := connect(ctx, cfg)
	if err != nil {
		log.WarnContext(ctx, "counter store unreachable, using in-process fallback",
			logger.Component("counter"), logger.Error(err))
		return NewMemoryStore()
	}

	log.InfoContext(ctx, "connected to counter store",
		logger.Component("counter"), slog.String("url", redactURL(cfg.URL)))
	return NewRedisStore(client)
}

// redactURL masks any userinfo password so DSNs are loggable.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Redacted()
}

// Healthcheck returns a readiness probe for the selected backend.
func Healthcheck(store Store) func(context.Context) error {
	return func(ctx context.Context) error {
		return store.Ping(ctx)
	}
}
