package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/agentkit/core"
)

// RecordBuilder provides a fluent helper for constructing memory records in tests.
// Example:
//
//	r := NewRecordBuilder("s1").User("hello").Embedding(1, 0).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type RecordBuilder struct {
	sessionID  string
	id         *uuid.UUID
	role       core.Role
	content    string
	importance *float32
	timestamp  *time.Time
	metadata   map[string]string
	embedding  []float32
}

// NewRecordBuilder creates a builder for a user record in the given session.
func NewRecordBuilder(sessionID string) *RecordBuilder {
	return &RecordBuilder{sessionID: sessionID, role: core.RoleUser}
}

// ID overrides the generated record ID (chainable).
func (b *RecordBuilder) ID(id uuid.UUID) *RecordBuilder { b.id = &id; return b }

// User sets role user and the content (chainable).
func (b *RecordBuilder) User(text string) *RecordBuilder {
	b.role, b.content = core.RoleUser, text
	return b
}

// Assistant sets role assistant and the content (chainable).
func (b *RecordBuilder) Assistant(text string) *RecordBuilder {
	b.role, b.content = core.RoleAssistant, text
	return b
}

// Tool sets role tool and the content (chainable).
func (b *RecordBuilder) Tool(text string) *RecordBuilder {
	b.role, b.content = core.RoleTool, text
	return b
}

// Role sets an arbitrary role (chainable).
func (b *RecordBuilder) Role(r core.Role) *RecordBuilder { b.role = r; return b }

// Importance overrides the default importance (chainable).
func (b *RecordBuilder) Importance(v float32) *RecordBuilder { b.importance = &v; return b }

// At pins the record timestamp (chainable).
func (b *RecordBuilder) At(ts time.Time) *RecordBuilder { b.timestamp = &ts; return b }

// Meta adds a metadata entry (chainable).
func (b *RecordBuilder) Meta(key, value string) *RecordBuilder {
	if b.metadata == nil {
		b.metadata = map[string]string{}
	}
	b.metadata[key] = value
	return b
}

// Embedding sets the embedding vector (chainable).
func (b *RecordBuilder) Embedding(v ...float32) *RecordBuilder { b.embedding = v; return b }

// Build constructs the core.MemoryRecord value.
func (b *RecordBuilder) Build() core.MemoryRecord {
	r := core.NewMemoryRecord(b.sessionID, b.role, b.content)
	if b.id != nil {
		r.ID = *b.id
	}
	if b.importance != nil {
		r = r.WithImportance(*b.importance)
	}
	if b.timestamp != nil {
		r.Timestamp = *b.timestamp
	}
	if b.metadata != nil {
		r = r.WithMetadata(b.metadata)
	}
	if b.embedding != nil {
		r = r.WithEmbedding(b.embedding)
	}
	return r
}

// Records builds one record per content string, alternating user and
// assistant roles starting with user.
func Records(sessionID string, contents ...string) []core.MemoryRecord {
	out := make([]core.MemoryRecord, len(contents))
	for i, c := range contents {
		b := NewRecordBuilder(sessionID).User(c)
		if i%2 == 1 {
			b.Assistant(c)
		}
		out[i] = b.Build()
	}
	return out
}
