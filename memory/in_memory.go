package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/hupe1980/agentkit/core"
)

// InMemoryStore is a naive process‑local MemoryStore.
//
// Concurrency: protected by RWMutex.
// Search: linear scan over the session's embedded records ranked by cosine
// similarity; equal scores keep insertion order. Suitable only for tests /
// demos; swap for a vector DB for production retrieval.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]core.MemoryRecord // sessionID -> records in insertion order
}

// NewInMemoryStore creates a new in-memory memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]core.MemoryRecord)}
}

// Store appends the record to its session.
func (m *InMemoryStore) Store(_ context.Context, record core.MemoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[record.SessionID] = append(m.sessions[record.SessionID], record.Clone())
	return nil
}

// Retrieve returns up to limit records of the session, most recent first.
func (m *InMemoryStore) Retrieve(_ context.Context, sessionID string, limit int) ([]core.MemoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := m.sessions[sessionID]
	n := min(max(limit, 0), len(records))
	out := make([]core.MemoryRecord, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i].Clone())
	}
	return out, nil
}

// Search ranks the session's embedded records by cosine similarity.
func (m *InMemoryStore) Search(_ context.Context, sessionID string, queryEmbedding []float32, limit int) ([]core.MemoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type scored struct {
		score  float32
		record core.MemoryRecord
	}
	var hits []scored
	for _, r := range m.sessions[sessionID] {
		if !r.HasEmbedding() {
			continue
		}
		hits = append(hits, scored{score: CosineSimilarity(queryEmbedding, r.Embedding), record: r})
	}
	slices.SortStableFunc(hits, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	n := min(max(limit, 0), len(hits))
	out := make([]core.MemoryRecord, n)
	for i := range n {
		out[i] = hits[i].record.Clone()
	}
	return out, nil
}

// Flush is a no-op; the store has no buffered writes.
func (m *InMemoryStore) Flush(context.Context) error { return nil }

// Len returns the number of records held for a session.
func (m *InMemoryStore) Len(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[sessionID])
}

var _ core.MemoryStore = (*InMemoryStore)(nil)
