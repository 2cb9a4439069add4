package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/gatekit/internal/auth"
	"github.com/dmitrymomot/gatekit/internal/logger"
	"github.com/dmitrymomot/gatekit/internal/metrics"
	"github.com/dmitrymomot/gatekit/internal/proxy"
	"github.com/dmitrymomot/gatekit/internal/quota"
	"github.com/dmitrymomot/gatekit/internal/registry"
)

// Authenticator resolves the caller identity for one request.
// *auth.Resolver satisfies it.
type Authenticator interface {
	Resolve(ctx context.Context, req auth.Request) (auth.Identity, error)
}

// RateLimiter charges the request to the subject's quota windows.
// *quota.Limiter satisfies it.
type RateLimiter interface {
	Allow(ctx context.Context, sub quota.Subject, plan registry.Plan) (quota.Result, error)
}

// Forwarder sends the request to the tenant upstream. *proxy.Proxy satisfies it.
type Forwarder interface {
	Forward(ctx context.Context, in *http.Request, upstreamBase, path string) (*http.Response, error)
}

// UsageRecorder schedules an asynchronous usage write. *usage.Recorder
// satisfies it.
type UsageRecorder interface {
	Record(tenantID, apiID int64)
}

// Handler runs the data-plane pipeline for one inbound request:
// authenticate, rate limit, forward, record usage.
type Handler struct {
	auth    Authenticator
	limiter RateLimiter
	fwd     Forwarder
	usage   UsageRecorder
	log     *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler wires the pipeline stages together.
func NewHandler(a Authenticator, l RateLimiter, f Forwarder, u UsageRecorder, opts ...HandlerOption) *Handler {
	h := &Handler{
		auth:    a,
		limiter: l,
		fwd:     f,
		usage:   u,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements the gateway route. The tenant and api slugs come from
// the router; the remaining wildcard is the upstream path, which may be empty.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.auth.Resolve(ctx, auth.Request{
		TenantSlug: chi.URLParam(r, "tenant"),
		APISlug:    chi.URLParam(r, "api"),
		APIKey:     r.Header.Get("X-API-Key"),
		ClientID:   r.Header.Get("X-Client-ID"),
	})
	if err != nil {
		h.reject(w, r, chi.URLParam(r, "tenant"), chi.URLParam(r, "api"), err)
		return
	}

	// The asserted client, when present, is charged instead of the key; the
	// two never share buckets.
	sub := quota.KeySubject(identity.Key.ID)
	if identity.Client != nil {
		sub = quota.ClientSubject(identity.Client.ID)
	}

	res, err := h.limiter.Allow(ctx, sub, identity.Plan)
	if err != nil {
		window := "minute"
		if errors.Is(err, quota.ErrMonthExceeded) {
			window = "month"
		}
		metrics.ObserveQuotaRejection(identity.Tenant.Slug, window)
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		h.reject(w, r, identity.Tenant.Slug, identity.API.Slug, err)
		return
	}

	start := time.Now()
	resp, err := h.fwd.Forward(ctx, r, identity.API.UpstreamBaseURL, chi.URLParam(r, "*"))

	// Usage counts attempts, not successes: a 502 still reflects load the
	// tenant put on the gateway.
	h.usage.Record(identity.Tenant.ID, identity.API.ID)

	if err != nil {
		if errors.Is(err, proxy.ErrUpstreamUnavailable) {
			h.log.ErrorContext(ctx, "upstream request failed",
				logger.TenantID(identity.Tenant.ID), logger.APIID(identity.API.ID), logger.Error(err))
			h.reject(w, r, identity.Tenant.Slug, identity.API.Slug, err)
			return
		}
		// Client disconnected mid-flight; nobody is listening for a response.
		h.log.DebugContext(ctx, "request aborted by client",
			logger.TenantID(identity.Tenant.ID), logger.Error(err))
		return
	}
	defer resp.Body.Close()

	metrics.ObserveUpstream(identity.Tenant.Slug, identity.API.Slug, time.Since(start))
	metrics.ObserveRequest(identity.Tenant.Slug, identity.API.Slug, resp.StatusCode)

	proxy.CopyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.log.WarnContext(ctx, "response copy interrupted",
			logger.TenantID(identity.Tenant.ID), logger.Error(err))
	}
}

// reject maps a pipeline error to its status and JSON body and emits the
// request metric.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, tenant, api string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("tenant", tenant), slog.String("api", api),
			slog.Int("status", status), logger.Error(err))
	}
	metrics.ObserveRequest(tenant, api, status)
	respondError(w, status, message)
}

// statusFor translates pipeline sentinels into the gateway's error contract.
// Anything unrecognized is an infrastructure failure and maps to 503.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrMissingAPIKey):
		return http.StatusUnauthorized, auth.ErrMissingAPIKey.Error()
	case errors.Is(err, auth.ErrUnknownTenant):
		return http.StatusNotFound, auth.ErrUnknownTenant.Error()
	case errors.Is(err, auth.ErrUnknownAPI):
		return http.StatusNotFound, auth.ErrUnknownAPI.Error()
	case errors.Is(err, auth.ErrInvalidAPIKey):
		return http.StatusForbidden, auth.ErrInvalidAPIKey.Error()
	case errors.Is(err, auth.ErrInvalidClientID):
		return http.StatusForbidden, auth.ErrInvalidClientID.Error()
	case errors.Is(err, auth.ErrInvalidPlan):
		return http.StatusForbidden, auth.ErrInvalidPlan.Error()
	case errors.Is(err, quota.ErrMinuteExceeded):
		return http.StatusTooManyRequests, quota.ErrMinuteExceeded.Error()
	case errors.Is(err, quota.ErrMonthExceeded):
		return http.StatusTooManyRequests, quota.ErrMonthExceeded.Error()
	case errors.Is(err, proxy.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream service unavailable"
	default:
		return http.StatusServiceUnavailable, "service unavailable"
	}
}
