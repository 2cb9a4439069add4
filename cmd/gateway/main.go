package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/gatekit/internal/auth"
	"github.com/dmitrymomot/gatekit/internal/config"
	"github.com/dmitrymomot/gatekit/internal/counter"
	"github.com/dmitrymomot/gatekit/internal/gateway"
	"github.com/dmitrymomot/gatekit/internal/httpserver"
	"github.com/dmitrymomot/gatekit/internal/logger"
	"github.com/dmitrymomot/gatekit/internal/metrics"
	"github.com/dmitrymomot/gatekit/internal/proxy"
	"github.com/dmitrymomot/gatekit/internal/quota"
	"github.com/dmitrymomot/gatekit/internal/registry"
	"github.com/dmitrymomot/gatekit/internal/usage"
)

type appConfig struct {
	Logger   logger.Config
	Server   httpserver.Config
	Registry registry.Config
	Counter  counter.Config
	Proxy    proxy.Config
	Usage    usage.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// The registry is the source of truth for routing and credentials; the
	// gateway cannot serve without it.
	pool, err := registry.Connect(ctx, cfg.Registry)
	if err != nil {
		return fmt.Errorf("connect registry: %w", err)
	}
	defer pool.Close()

	store := counter.Open(ctx, cfg.Counter, log)
	defer store.Close()
	_, fallback := store.(*counter.MemoryStore)
	metrics.SetCounterFallback(fallback)

	fwd := proxy.New(cfg.Proxy)
	defer fwd.CloseIdleConnections()

	recorder := usage.NewRecorder(store, cfg.Usage, usage.WithLogger(log))
	defer recorder.Close()

	handler := gateway.NewHandler(
		auth.NewResolver(registry.NewStore(pool)),
		quota.NewLimiter(store, quota.WithLogger(log)),
		fwd,
		recorder,
		gateway.WithLogger(log),
	)

	router := gateway.NewRouter(handler, log, map[string]gateway.Healthcheck{
		"registry": registry.Healthcheck(pool),
		"counter":  counter.Healthcheck(store),
	})

	log.InfoContext(ctx, "starting gateway",
		slog.String("addr", cfg.Server.Addr),
		slog.Bool("counter_fallback", fallback))

	srv := httpserver.New(cfg.Server, httpserver.WithLogger(log))
	return srv.Run(ctx, router)
}
