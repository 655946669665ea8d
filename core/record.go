package core

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a record or message.
type Role string

const (
	// RoleSystem is the system prompt channel.
	RoleSystem Role = "system"
	// RoleUser is a human turn.
	RoleUser Role = "user"
	// RoleAssistant is a model (or shortcut resolver) turn.
	RoleAssistant Role = "assistant"
	// RoleTool is synthetic tool output.
	RoleTool Role = "tool"
)

// ParseRole maps a free-form role string onto a known Role. Unknown values map
// to RoleUser.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return Role(s)
	default:
		return RoleUser
	}
}

// DefaultImportance is assigned to records created through NewMemoryRecord.
const DefaultImportance float32 = 0.5

// MemoryRecord is one turn of conversation or tool output. Records are value
// types; the With* helpers return modified copies and never touch the receiver.
type MemoryRecord struct {
	ID         uuid.UUID         `json:"id"`
	SessionID  string            `json:"session_id"`
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	Importance float32           `json:"importance"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Embedding  []float32         `json:"embedding,omitempty"`
}

// NewMemoryRecord creates a record with a fresh id, the current UTC timestamp
// and DefaultImportance.
func NewMemoryRecord(sessionID string, role Role, content string) MemoryRecord {
	return MemoryRecord{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		Importance: DefaultImportance,
		Timestamp:  time.Now().UTC(),
	}
}

// WithMetadata returns a copy of r carrying a copy of md.
func (r MemoryRecord) WithMetadata(md map[string]string) MemoryRecord {
	r.Metadata = maps.Clone(md)
	return r
}

// WithEmbedding returns a copy of r carrying a copy of emb.
func (r MemoryRecord) WithEmbedding(emb []float32) MemoryRecord {
	r.Embedding = slices.Clone(emb)
	return r
}

// WithImportance returns a copy of r with importance clamped to [0, 1].
func (r MemoryRecord) WithImportance(importance float32) MemoryRecord {
	r.Importance = min(max(importance, 0), 1)
	return r
}

// HasEmbedding reports whether the record carries a non-empty embedding.
func (r MemoryRecord) HasEmbedding() bool { return len(r.Embedding) > 0 }

// Clone returns a deep copy so callers can hand records out without sharing
// the metadata map or embedding slice.
func (r MemoryRecord) Clone() MemoryRecord {
	r.Metadata = maps.Clone(r.Metadata)
	r.Embedding = slices.Clone(r.Embedding)
	return r
}
