package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Labels carry tenant and api slugs, not raw ids or keys: slugs are
// low-cardinality and human-readable on dashboards.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Requests handled by the gateway, by tenant, api and response status",
	}, []string{"tenant", "api", "status"})

	quotaRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_quota_rejections_total",
		Help: "Requests rejected by quota enforcement, by window kind",
	}, []string{"tenant", "window"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_upstream_duration_seconds",
		Help:    "Latency of upstream exchanges, including failed ones",
		Buckets: prometheus.DefBuckets,
	}, []string{"tenant", "api"})

	counterFallbackActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_counter_fallback_active",
		Help: "1 when the in-process counter fallback is serving quota state",
	})
)

// ObserveRequest records one handled request.
func ObserveRequest(tenant, api string, status int) {
	requestsTotal.WithLabelValues(tenant, api, strconv.Itoa(status)).Inc()
}

// ObserveQuotaRejection records a 429, window is "minute" or "month".
func ObserveQuotaRejection(tenant, window string) {
	quotaRejectionsTotal.WithLabelValues(tenant, window).Inc()
}

// ObserveUpstream records the duration of one upstream exchange.
func ObserveUpstream(tenant, api string, elapsed time.Duration) {
	upstreamDuration.WithLabelValues(tenant, api).Observe(elapsed.Seconds())
}

// SetCounterFallback flags whether the in-process counter fallback is active.
func SetCounterFallback(active bool) {
	if active {
		counterFallbackActive.Set(1)
	} else {
		counterFallbackActive.Set(0)
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
