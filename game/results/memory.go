package results

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]Record
	order     []string // run IDs, oldest first
	maxRecent int
}

// NewMemoryStore creates a store that keeps at most maxRecent records
func NewMemoryStore(maxRecent int) *MemoryStore {
	if maxRecent <= 0 {
		maxRecent = DefaultMaxRecent
	}
	return &MemoryStore{
		byID:      make(map[string]Record),
		maxRecent: maxRecent,
	}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[rec.RunID]; !exists {
		m.order = append(m.order, rec.RunID)
	}
	m.byID[rec.RunID] = rec

	// Evict the oldest records past the cap
	for len(m.order) > m.maxRecent {
		delete(m.byID, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, runID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[runID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (m *MemoryStore) Recent(_ context.Context, n int) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 || n > len(m.order) {
		n = len(m.order)
	}
	out := make([]Record, 0, n)
	for i := len(m.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.byID[m.order[i]])
	}
	return out, nil
}

func (m *MemoryStore) Leaderboard(_ context.Context, scenario string, n int) ([]Record, error) {
	m.mu.RLock()
	var out []Record
	for _, rec := range m.byID {
		if rec.Scenario == scenario {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
