// Package requestid provides the X-Request-ID middleware and its context
// accessors. Ids correlate gateway log lines with upstream traffic.
package requestid
