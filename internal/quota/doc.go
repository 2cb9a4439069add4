// Package quota enforces plan quotas with fixed windows over the counter
// store: an always-on per-minute window and an optional per-month window.
//
// Every request past authentication performs exactly one minute increment on
// its subject's bucket regardless of outcome, and at most one month
// increment. Rejected requests keep their increment; the overcount is
// bounded and accepted for simplicity. Counter-store failures fail open.
package quota
