package cache

import (
	"sync"
	"time"

	"github.com/Giftea/skillbazaar/pkg/metrics"
)

// Entry is one cached payload with its capture time. Entries never expire on
// their own; validity is judged against the TTL supplied by the reader, so the
// same key can be consulted with different freshness requirements.
type Entry struct {
	Value      []byte
	CapturedAt time.Time
}

// Memory is a process-local read-through cache for hot read endpoints. Values
// are stored as marshalled JSON so that repeated reads inside a TTL window are
// byte-identical. It is reset on restart and has no invalidation path on
// writes: a registration or execution can be masked by a cached view for up to
// the TTL window.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	clock   func() time.Time
}

// Option customises the Memory cache.
type Option func(*Memory)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Memory) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewMemory constructs an empty cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string]Entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached value for key if it was captured within ttl.
func (m *Memory) Get(key string, ttl time.Duration) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || m.clock().Sub(entry.CapturedAt) >= ttl {
		return nil, false
	}
	return entry.Value, true
}

// Set stores value under key with the current timestamp.
func (m *Memory) Set(key string, value []byte) {
	m.mu.Lock()
	m.entries[key] = Entry{Value: value, CapturedAt: m.clock()}
	m.mu.Unlock()
}

// GetOrCompute returns the cached value for key when fresh, otherwise invokes
// compute, stores the result, and returns it. The boolean reports a cache hit.
//
// Concurrent misses on the same key may each invoke compute; computations are
// idempotent reads, so the duplicated work is accepted instead of adding
// single-flight coordination.
func (m *Memory) GetOrCompute(key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	if value, ok := m.Get(key, ttl); ok {
		metrics.CacheLookups.WithLabelValues(key, "hit").Inc()
		return value, true, nil
	}
	metrics.CacheLookups.WithLabelValues(key, "miss").Inc()

	value, err := compute()
	if err != nil {
		return nil, false, err
	}

	m.Set(key, value)
	return value, false, nil
}
