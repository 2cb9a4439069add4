package proxy

import (
	"net/http"
	"strings"
)

// strippedRequestHeaders never reach the upstream. Host and Content-Length
// are regenerated by the outbound client; X-API-Key is the gateway's own
// credential. X-Client-ID deliberately passes through so upstreams can
// observe the sub-identity.
var strippedRequestHeaders = map[string]struct{}{
	"host":           {},
	"content-length": {},
	"x-api-key":      {},
}

// strippedResponseHeaders never reach the client; the server regenerates the
// response framing.
var strippedResponseHeaders = map[string]struct{}{
	"content-encoding":  {},
	"content-length":    {},
	"transfer-encoding": {},
	"connection":        {},
}

// OutboundHeaders copies the inbound headers minus the stripped set,
// matching case-insensitively.
func OutboundHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for name, values := range in {
		if _, drop := strippedRequestHeaders[strings.ToLower(name)]; drop {
			continue
		}
		out[name] = values
	}
	return out
}

// CopyResponseHeaders writes the upstream response headers into dst minus
// the stripped set, matching case-insensitively.
func CopyResponseHeaders(dst, src http.Header) {
	for name, values := range src {
		if _, drop := strippedResponseHeaders[strings.ToLower(name)]; drop {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

// JoinUpstreamURL composes the upstream URL: any trailing slash of the base
// and any leading slash of the path are stripped, then the two are joined
// with a single slash. An empty path yields base + "/".
func JoinUpstreamURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
