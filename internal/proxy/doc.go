// Package proxy forwards authenticated gateway traffic to tenant upstreams.
//
// It owns the pooled outbound HTTP client, upstream URL composition, and the
// header hygiene on both legs: the gateway credential never reaches the
// upstream, and the upstream's framing headers never reach the client.
package proxy
