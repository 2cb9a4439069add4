package proxy

import "errors"

// ErrUpstreamUnavailable is returned for any transport-level failure talking
// to the upstream: DNS, connect, TLS, read, write, or client-side timeout.
// A non-2xx upstream response is not an error and passes through verbatim.
var ErrUpstreamUnavailable = errors.New("upstream service unavailable")
