package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hupe1980/agentkit/core"
)

// MockStore is a testify mock implementing core.MemoryStore.
type MockStore struct{ mock.Mock }

// Store records the call.
func (m *MockStore) Store(ctx context.Context, record core.MemoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Retrieve records the call.
func (m *MockStore) Retrieve(ctx context.Context, sessionID string, limit int) ([]core.MemoryRecord, error) {
	args := m.Called(ctx, sessionID, limit)
	recs, _ := args.Get(0).([]core.MemoryRecord)
	return recs, args.Error(1)
}

// Search records the call.
func (m *MockStore) Search(ctx context.Context, sessionID string, queryEmbedding []float32, limit int) ([]core.MemoryRecord, error) {
	args := m.Called(ctx, sessionID, queryEmbedding, limit)
	recs, _ := args.Get(0).([]core.MemoryRecord)
	return recs, args.Error(1)
}

// Flush records the call.
func (m *MockStore) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// FailingStore rejects every call with Err.
type FailingStore struct{ Err error }

// Store fails.
func (f FailingStore) Store(context.Context, core.MemoryRecord) error { return f.Err }

// Retrieve fails.
func (f FailingStore) Retrieve(context.Context, string, int) ([]core.MemoryRecord, error) {
	return nil, f.Err
}

// Search fails.
func (f FailingStore) Search(context.Context, string, []float32, int) ([]core.MemoryRecord, error) {
	return nil, f.Err
}

// Flush fails.
func (f FailingStore) Flush(context.Context) error { return f.Err }

var (
	_ core.MemoryStore = (*MockStore)(nil)
	_ core.MemoryStore = FailingStore{}
)
