package quota_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gatekit/internal/counter"
	"github.com/dmitrymomot/gatekit/internal/quota"
	"github.com/dmitrymomot/gatekit/internal/registry"
)

// recordingStore wraps a real memory store and records every call so tests
// can assert key shapes and TTLs.
type recordingStore struct {
	mu      sync.Mutex
	inner   *counter.MemoryStore
	incrs   []string
	expires map[string]time.Duration
	failing bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		inner:   counter.NewMemoryStore(counter.WithSweepInterval(0)),
		expires: make(map[string]time.Duration),
	}
}

func (s *recordingStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, counter.ErrUnavailable
	}
	s.incrs = append(s.incrs, key)
	return s.inner.Incr(ctx, key)
}

func (s *recordingStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return counter.ErrUnavailable
	}
	s.expires[key] = ttl
	return s.inner.Expire(ctx, key, ttl)
}

func (s *recordingStore) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *recordingStore) Close() error                   { return s.inner.Close() }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLimiter_MinuteWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	at := time.Unix(1_700_000_000, 0) // minute bucket 28333333
	plan := registry.Plan{ID: 1, RequestsPerMinute: 2, IsActive: true}

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))
		sub := quota.KeySubject(100)

		res, err := limiter.Allow(ctx, sub, plan)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Remaining)

		res, err = limiter.Allow(ctx, sub, plan)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Remaining)

		res, err = limiter.Allow(ctx, sub, plan)
		require.ErrorIs(t, err, quota.ErrMinuteExceeded)
		assert.Equal(t, int64(2), res.Limit)
		assert.Equal(t, int64(0), res.Remaining)

		// The rejected request still consumed an increment.
		assert.Len(t, store.incrs, 3)
	})

	t.Run("uses the documented key shape and TTL", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))

		_, err := limiter.Allow(ctx, quota.KeySubject(100), plan)
		require.NoError(t, err)

		wantKey := "rate_limit:100:28333333"
		require.Equal(t, []string{wantKey}, store.incrs)
		assert.Equal(t, 60*time.Second, store.expires[wantKey])
	})

	t.Run("sets TTL only on the first increment", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))
		sub := quota.KeySubject(101)

		_, err := limiter.Allow(ctx, sub, plan)
		require.NoError(t, err)
		_, err = limiter.Allow(ctx, sub, plan)
		require.NoError(t, err)

		assert.Len(t, store.expires, 1)
	})

	t.Run("requests straddling a minute boundary use different buckets", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()

		now := at
		limiter := quota.NewLimiter(store, quota.WithClock(func() time.Time { return now }))
		sub := quota.KeySubject(102)
		one := registry.Plan{ID: 1, RequestsPerMinute: 1, IsActive: true}

		_, err := limiter.Allow(ctx, sub, one)
		require.NoError(t, err)
		_, err = limiter.Allow(ctx, sub, one)
		require.ErrorIs(t, err, quota.ErrMinuteExceeded)

		now = at.Add(time.Minute)
		_, err = limiter.Allow(ctx, sub, one)
		require.NoError(t, err)
	})

	t.Run("key and client subjects consume separate buckets", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))
		one := registry.Plan{ID: 1, RequestsPerMinute: 1, IsActive: true}

		// Same numeric id on purpose; the prefixes keep them apart.
		_, err := limiter.Allow(ctx, quota.KeySubject(7), one)
		require.NoError(t, err)
		_, err = limiter.Allow(ctx, quota.ClientSubject(7), one)
		require.NoError(t, err)

		assert.Contains(t, store.incrs, "rate_limit:7:28333333")
		assert.Contains(t, store.incrs, "rate_limit_client:7:28333333")
	})
}

func TestLimiter_MonthWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	at := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)

	monthly := func(perMinute, perMonth int64) registry.Plan {
		return registry.Plan{ID: 2, RequestsPerMinute: perMinute, RequestsPerMonth: &perMonth, IsActive: true}
	}

	t.Run("month bucket uses unpadded UTC label and 32 day TTL", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))

		_, err := limiter.Allow(ctx, quota.KeySubject(100), monthly(10, 1000))
		require.NoError(t, err)

		monthKey := "rate_limit:100:month:2025-3"
		assert.Contains(t, store.incrs, monthKey)
		assert.Equal(t, 32*24*time.Hour, store.expires[monthKey])
	})

	t.Run("rejects when the monthly cap is exhausted", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))
		sub := quota.KeySubject(101)

		_, err := limiter.Allow(ctx, sub, monthly(10, 1))
		require.NoError(t, err)
		_, err = limiter.Allow(ctx, sub, monthly(10, 1))
		require.ErrorIs(t, err, quota.ErrMonthExceeded)
	})

	t.Run("minute rejection short-circuits the month increment", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))
		sub := quota.KeySubject(102)

		_, err := limiter.Allow(ctx, sub, monthly(1, 1000))
		require.NoError(t, err)
		_, err = limiter.Allow(ctx, sub, monthly(1, 1000))
		require.ErrorIs(t, err, quota.ErrMinuteExceeded)

		var monthIncrs int
		for _, key := range store.incrs {
			if key == "rate_limit:102:month:2025-3" {
				monthIncrs++
			}
		}
		assert.Equal(t, 1, monthIncrs, "second request must not touch the month bucket")
	})

	t.Run("plans without a monthly cap never touch a month bucket", func(t *testing.T) {
		t.Parallel()

		store := newRecordingStore()
		defer store.Close()
		limiter := quota.NewLimiter(store, quota.WithClock(fixedClock(at)))

		_, err := limiter.Allow(ctx, quota.KeySubject(103), registry.Plan{ID: 1, RequestsPerMinute: 10, IsActive: true})
		require.NoError(t, err)

		for _, key := range store.incrs {
			assert.NotContains(t, key, ":month:")
		}
	})
}

func TestLimiter_FailOpen(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	defer store.Close()
	store.failing = true

	limiter := quota.NewLimiter(store)
	plan := registry.Plan{ID: 1, RequestsPerMinute: 1, IsActive: true}

	for range 3 {
		res, err := limiter.Allow(context.Background(), quota.KeySubject(1), plan)
		require.NoError(t, err, "counter outage must not deny service")
		assert.Equal(t, plan.RequestsPerMinute, res.Remaining)
	}
}

func TestMonthLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2025-3", quota.MonthLabel(time.Date(2025, time.March, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2025-12", quota.MonthLabel(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))

	// The label is derived from UTC, not the local zone.
	east := time.FixedZone("UTC+13", 13*3600)
	assert.Equal(t, "2025-3", quota.MonthLabel(time.Date(2025, time.April, 1, 10, 0, 0, 0, east)))
}

func TestMinuteBucket(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(28333333), quota.MinuteBucket(time.Unix(1_700_000_000, 0)))
	assert.Equal(t, int64(0), quota.MinuteBucket(time.Unix(59, 0)))
	assert.Equal(t, int64(1), quota.MinuteBucket(time.Unix(60, 0)))
}
