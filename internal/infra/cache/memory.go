package cache

import (
	"sync"
	"time"

	"github.com/bryanwahyu/emergency-response/internal/application"
	domain "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
)

type entry struct {
	result    *domain.Result
	expiresAt time.Time
}

// Memory is a process-lifetime TTL cache keyed by request fingerprint.
// Eviction is lazy on read; Sweep exists only as an optimization hook for a
// scheduler. There is no size bound: this is a dedup layer, not an LRU.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   application.Clock
}

func NewMemory(clock application.Clock) *Memory {
	return &Memory{entries: make(map[string]entry), clock: clock}
}

// Get returns a copy of the cached result, evicting the entry when its TTL
// has elapsed. An entry expiring exactly now counts as absent.
func (m *Memory) Get(fingerprint string) (*domain.Result, bool) {
	m.mu.RLock()
	e, ok := m.entries[fingerprint]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !m.clock.Now().Before(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have renewed it.
		if cur, still := m.entries[fingerprint]; still && !m.clock.Now().Before(cur.expiresAt) {
			delete(m.entries, fingerprint)
		}
		m.mu.Unlock()
		return nil, false
	}

	return e.result.Clone(), true
}

// Put stores an independent copy of the result, overwriting any existing
// entry for the fingerprint.
func (m *Memory) Put(fingerprint string, r *domain.Result, ttl time.Duration) {
	e := entry{result: r.Clone(), expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Lock()
	m.entries[fingerprint] = e
	m.mu.Unlock()
}

// Sweep drops expired entries and reports how many were removed.
func (m *Memory) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for fp, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, fp)
			removed++
		}
	}
	return removed
}

// Len reports live plus not-yet-swept entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Reset clears everything.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}
