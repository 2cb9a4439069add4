package usage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/gatekit/internal/counter"
	"github.com/dmitrymomot/gatekit/internal/logger"
	"github.com/dmitrymomot/gatekit/internal/quota"
)

// Config holds the usage recorder settings.
type Config struct {
	QueueSize    int           `env:"USAGE_QUEUE_SIZE" envDefault:"1024"`   // QueueSize bounds records waiting for the worker; overflow is dropped.
	WriteTimeout time.Duration `env:"USAGE_WRITE_TIMEOUT" envDefault:"5s"` // WriteTimeout bounds one counter increment.
}

type record struct {
	tenantID int64
	apiID    int64
	at       time.Time
}

// Recorder increments per-minute usage counters for billing, off the request
// path. Record never blocks and failures are swallowed: usage accounting
// must not delay or fail traffic.
type Recorder struct {
	store counter.Store
	log   *slog.Logger
	cfg   Config
	now   func() time.Time

	queue     chan record
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger for dropped and failed records.
func WithLogger(log *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the wall clock, used by tests to pin minute buckets.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder creates a recorder and starts its worker goroutine.
func NewRecorder(store counter.Store, cfg Config, opts ...RecorderOption) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		store: store,
		log:   slog.New(slog.DiscardHandler),
		cfg:   cfg,
		now:   time.Now,
		queue: make(chan record, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// Record schedules one usage increment for the tenant's api. The minute
// bucket is stamped at scheduling time, not at write time, so a backlogged
// queue still attributes usage to the right window. When the queue is full
// the record is dropped and logged; usage is best-effort.
func (r *Recorder) Record(tenantID, apiID int64) {
	select {
	case r.queue <- record{tenantID: tenantID, apiID: apiID, at: r.now()}:
	default:
		r.log.Warn("usage queue full, dropping record",
			logger.Component("usage"), logger.TenantID(tenantID), logger.APIID(apiID))
	}
}

// Close stops accepting records and drains the queue. Safe to call multiple
// times.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for rec := range r.queue {
		// Detached context: a record scheduled by a cancelled request is
		// still written.
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
		key := fmt.Sprintf("usage:%d:%d:%d", rec.tenantID, rec.apiID, quota.MinuteBucket(rec.at))
		if _, err := r.store.Incr(ctx, key); err != nil {
			r.log.Warn("usage increment failed",
				logger.Component("usage"), slog.String("key", key), logger.Error(err))
		}
		cancel()
	}
}
