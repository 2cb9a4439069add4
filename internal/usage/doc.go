// Package usage records per-minute request counters the control plane drains
// for billing. Recording is fire-and-forget through a bounded queue and a
// single worker; it never delays a response and never fails a request.
package usage
