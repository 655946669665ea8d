package core

import "context"

// MemoryStore is the durable backend behind session memory. Implementations
// must surface backend failures as errors (never drop a write silently).
//
//   - Store persists a single record.
//   - Retrieve returns up to limit records of a session, most recent first.
//   - Search ranks a session's embedded records by similarity to the query.
//   - Flush forces buffered writes to durable state; a no-op is valid.
type MemoryStore interface {
	Store(ctx context.Context, record MemoryRecord) error
	Retrieve(ctx context.Context, sessionID string, limit int) ([]MemoryRecord, error)
	Search(ctx context.Context, sessionID string, queryEmbedding []float32, limit int) ([]MemoryRecord, error)
	Flush(ctx context.Context) error
}
