package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/gatekit/internal/counter"
	"github.com/dmitrymomot/gatekit/internal/logger"
	"github.com/dmitrymomot/gatekit/internal/registry"
)

const (
	minuteWindowTTL = 60 * time.Second

	// monthWindowTTL deliberately overestimates the longest calendar month so
	// a bucket created on the 1st still exists on the last day. 32 days.
	monthWindowTTL = 32 * 24 * time.Hour
)

// Subject is the identity whose buckets are charged: the client row when the
// request asserted one, the api key otherwise. The two kinds use separate
// key prefixes, so the same key with and without X-Client-ID consumes
// separate buckets.
type Subject struct {
	kind string
	id   int64
}

// KeySubject charges quotas to an api key.
func KeySubject(keyID int64) Subject {
	return Subject{kind: "rate_limit", id: keyID}
}

// ClientSubject charges quotas to a client row.
func ClientSubject(clientRowID int64) Subject {
	return Subject{kind: "rate_limit_client", id: clientRowID}
}

func (s Subject) base() string {
	return fmt.Sprintf("%s:%d", s.kind, s.id)
}

// Result reports the per-minute window state after the check.
type Result struct {
	Limit     int64 // plan requests-per-minute
	Remaining int64 // requests left in the current minute window, never negative
}

// Limiter enforces fixed-window per-minute and per-month quotas on top of
// the counter store. Windows are fixed, not sliding: a burst of 2x the
// per-minute limit is possible across a minute boundary. A rejected request
// has already consumed its increment; counters are never decremented.
type Limiter struct {
	store counter.Store
	log   *slog.Logger
	now   func() time.Time
}

// LimiterOption configures a Limiter.
type LimiterOption func(*Limiter)

// WithLogger sets the logger for fail-open events.
func WithLogger(log *slog.Logger) LimiterOption {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// WithClock overrides the wall clock, used by tests to pin windows.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter creates a limiter over the given counter store.
func NewLimiter(store counter.Store, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		store: store,
		log:   slog.New(slog.DiscardHandler),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow charges one request to the subject's buckets under the plan.
//
// The minute window is always checked first; the month window only when the
// plan carries a monthly cap, and only after the minute check passed. If the
// counter store fails mid-request the limiter fails open: the request is
// allowed and the failure logged, so an infrastructure hiccup does not turn
// into a denial of service.
func (l *Limiter) Allow(ctx context.Context, sub Subject, plan registry.Plan) (Result, error) {
	now := l.now()
	base := sub.base()

	minuteKey := fmt.Sprintf("%s:%d", base, MinuteBucket(now))
	count, err := l.store.Incr(ctx, minuteKey)
	if err != nil {
		l.log.WarnContext(ctx, "counter store failed, allowing request",
			logger.Component("quota"), slog.String("key", minuteKey), logger.Error(err))
		return Result{Limit: plan.RequestsPerMinute, Remaining: plan.RequestsPerMinute}, nil
	}
	if count == 1 {
		// Seeds the window TTL. A concurrent increment racing past 1 is
		// harmless: expire is idempotent.
		if err := l.store.Expire(ctx, minuteKey, minuteWindowTTL); err != nil {
			l.log.WarnContext(ctx, "failed to set minute window TTL",
				logger.Component("quota"), slog.String("key", minuteKey), logger.Error(err))
		}
	}
	if count > plan.RequestsPerMinute {
		return Result{Limit: plan.RequestsPerMinute, Remaining: 0}, ErrMinuteExceeded
	}

	res := Result{Limit: plan.RequestsPerMinute, Remaining: plan.RequestsPerMinute - count}

	if plan.RequestsPerMonth != nil {
		monthKey := fmt.Sprintf("%s:month:%s", base, MonthLabel(now))
		count, err := l.store.Incr(ctx, monthKey)
		if err != nil {
			l.log.WarnContext(ctx, "counter store failed, allowing request",
				logger.Component("quota"), slog.String("key", monthKey), logger.Error(err))
			return res, nil
		}
		if count == 1 {
			if err := l.store.Expire(ctx, monthKey, monthWindowTTL); err != nil {
				l.log.WarnContext(ctx, "failed to set month window TTL",
					logger.Component("quota"), slog.String("key", monthKey), logger.Error(err))
			}
		}
		if count > *plan.RequestsPerMonth {
			return Result{Limit: plan.RequestsPerMinute, Remaining: 0}, ErrMonthExceeded
		}
	}

	return res, nil
}

// MinuteBucket is the quantum of per-minute limiting: floor(unix seconds / 60).
func MinuteBucket(now time.Time) int64 {
	return now.Unix() / 60
}

// MonthLabel identifies the UTC calendar month as unpadded "{year}-{month}",
// e.g. "2025-3". The format is pinned: buckets written by one process version
// must not collide with another format.
func MonthLabel(now time.Time) string {
	u := now.UTC()
	return fmt.Sprintf("%d-%d", u.Year(), int(u.Month()))
}
