package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/gatekit/internal/logger"
	"github.com/dmitrymomot/gatekit/internal/metrics"
	"github.com/dmitrymomot/gatekit/internal/requestid"
)

// Healthcheck probes one dependency.
type Healthcheck func(context.Context) error

// proxiedMethods is the set of methods the gateway routes upstream.
// Anything else is answered with 405 and never leaves the gateway.
var proxiedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodHead,
	http.MethodOptions,
}

// NewRouter mounts the operational endpoints and the proxy route. Static
// paths win over the tenant wildcard, so /healthz and /metrics are reserved
// and never reach an upstream.
func NewRouter(h *Handler, log *slog.Logger, checks map[string]Healthcheck) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", healthz(log, checks))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	for _, method := range proxiedMethods {
		r.Method(method, "/{tenant}/{api}", h)
		r.Method(method, "/{tenant}/{api}/*", h)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "tenant not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// healthz runs every registered check and reports aggregate readiness.
func healthz(log *slog.Logger, checks map[string]Healthcheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				log.WarnContext(r.Context(), "healthcheck failed",
					slog.String("check", name), logger.Error(err))
				respondError(w, http.StatusServiceUnavailable, "service unavailable")
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
