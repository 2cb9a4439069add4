package counter

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// shardCount spreads keys over independent locks so concurrent increments
// from the server's handler goroutines do not serialize on one mutex.
const shardCount = 64

type memoryEntry struct {
	value     int64
	expiresAt time.Time // zero means no TTL assigned yet
}

type memoryShard struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// MemoryStore is the in-process fallback with the same semantics as the
// remote store: atomic post-increment and TTL expiry. Expired entries are
// dropped lazily on access and by a background sweep. Quotas enforced here
// are not shared across replicas.
type MemoryStore struct {
	shards [shardCount]*memoryShard

	sweepInterval time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once

	now func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithSweepInterval sets the background expiry sweep interval.
// Set to 0 to disable the sweep; lazy expiry on access still applies.
func WithSweepInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.sweepInterval = interval
	}
}

// WithClock overrides the wall clock, used by tests to step through windows.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates the fallback store and starts its expiry sweep.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		sweepInterval: time.Minute,
		stopSweep:     make(chan struct{}),
		now:           time.Now,
	}
	for i := range ms.shards {
		ms.shards[i] = &memoryShard{entries: make(map[string]*memoryEntry)}
	}

	for _, opt := range opts {
		opt(ms)
	}

	if ms.sweepInterval > 0 {
		go ms.sweep()
	}

	return ms
}

func (ms *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return ms.shards[h.Sum32()%shardCount]
}

func (ms *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	sh := ms.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := ms.now()
	e, ok := sh.entries[key]
	if !ok || e.expired(now) {
		e = &memoryEntry{}
		sh.entries[key] = e
	}
	e.value++
	return e.value, nil
}

func (ms *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	sh := ms.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := ms.now()
	e, ok := sh.entries[key]
	if !ok || e.expired(now) {
		return nil
	}
	e.expiresAt = now.Add(ttl)
	return nil
}

// Ping always succeeds; the fallback lives in-process.
func (ms *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close stops the expiry sweep. Safe to call multiple times.
func (ms *MemoryStore) Close() error {
	ms.stopOnce.Do(func() {
		close(ms.stopSweep)
	})
	return nil
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (ms *MemoryStore) sweep() {
	ticker := time.NewTicker(ms.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeExpired()
		case <-ms.stopSweep:
			return
		}
	}
}

func (ms *MemoryStore) removeExpired() {
	now := ms.now()
	for _, sh := range ms.shards {
		sh.mu.Lock()
		for key, e := range sh.entries {
			if e.expired(now) {
				delete(sh.entries, key)
			}
		}
		sh.mu.Unlock()
	}
}
