// Package metrics exposes the gateway's Prometheus instrumentation: request
// totals, quota rejections, upstream latency, and the counter-fallback flag.
package metrics
