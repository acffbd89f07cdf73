package store

import (
	"context"
	"sync"
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
)

type kvEntry struct {
	value     []byte
	expiresAt time.Time
}

// KVMemory is an in-memory implementation of ratelimit.Store with TTL expiry.
type KVMemory struct {
	mu      sync.RWMutex
	entries map[string]kvEntry
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewKVMemory creates a new in-memory key-value store.
func NewKVMemory() *KVMemory {
	return &KVMemory{
		entries: make(map[string]kvEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// WithClock replaces the clock used for TTL expiry.
func (m *KVMemory) WithClock(now func() time.Time) *KVMemory {
	if now != nil {
		m.now = now
	}

	return m
}

func (m *KVMemory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		// Re-check: a concurrent Put may have refreshed the key.
		if current, ok := m.entries[key]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()

		return nil, false, nil
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)

	return value, true, nil
}

func (m *KVMemory) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	entry := kvEntry{value: stored}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry

	return nil
}

// Len returns the number of stored entries, including ones not yet pruned.
func (m *KVMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Prune removes expired entries and returns how many were dropped.
func (m *KVMemory) Prune() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0

	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}

	return removed
}

// StartJanitor prunes expired entries every interval until Shutdown, so
// counters of clients that never return are reclaimed. Only the first call
// starts a janitor.
func (m *KVMemory) StartJanitor(interval time.Duration) *KVMemory {
	if interval <= 0 {
		return m
	}

	m.mu.Lock()
	if m.done != nil {
		m.mu.Unlock()
		return m
	}
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.Prune()
			}
		}
	}()

	return m
}

// Shutdown stops the janitor, if any. It is safe to call more than once.
func (m *KVMemory) Shutdown() error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.RLock()
	done := m.done
	m.mu.RUnlock()

	if done != nil {
		<-done
	}

	return nil
}

// Compile-time check.
var _ ratelimit.Store = (*KVMemory)(nil)
