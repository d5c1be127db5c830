package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	expiresAt time.Time
	value     Value
}

// Memory is a process-local Cache. Expired entries are dropped lazily on
// read and when the cache is full.
type Memory struct {
	now      func() time.Time
	entries  map[string]entry
	capacity int
	ttl      time.Duration
	mu       sync.Mutex
}

type Option func(*Memory)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

func NewMemory(cfg Config, opts ...Option) *Memory {
	cfg = cfg.withDefaults()
	m := &Memory{
		now:      time.Now,
		entries:  make(map[string]entry, cfg.Capacity),
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (Value, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return Value{}, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return Value{}, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Put(_ context.Context, key string, value Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		m.dropExpired(now)
		if len(m.entries) >= m.capacity {
			m.evictSoonest()
		}
	}

	m.entries[key] = entry{
		expiresAt: now.Add(m.ttl),
		value:     value,
	}
	return nil
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) dropExpired(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictSoonest removes the entry closest to expiry. With one TTL for every
// entry that is the oldest insertion.
func (m *Memory) evictSoonest() {
	var (
		victim string
		soon   time.Time
		found  bool
	)
	for k, e := range m.entries {
		if !found || e.expiresAt.Before(soon) {
			victim, soon, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(m.entries, victim)
	}
}
