package memory

import (
	"context"
	"hash/maphash"
	"sync"
	"time"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
)

// Default SessionMemory settings.
const (
	DefaultWindow          = 10
	DefaultShards          = 16
	DefaultCandidateFactor = 4
)

// Options configures a SessionMemory.
type Options struct {
	// Window bounds the short-term cache of every session (records).
	Window int
	// Shards is the number of independently locked cache partitions.
	Shards int
	// CandidateFactor multiplies k when SearchDiverse fetches candidates.
	CandidateFactor int
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string][]core.MemoryRecord
}

// SessionMemory keeps a bounded FIFO cache of recent records per session and
// writes every record through to a core.MemoryStore.
//
// The cache is partitioned into shards keyed by session id so different
// sessions rarely contend. A shard lock only covers append + trim; store I/O
// always happens outside of it.
type SessionMemory struct {
	store  core.MemoryStore
	opts   Options
	seed   maphash.Seed
	shards []*shard
}

// NewSessionMemory creates a SessionMemory backed by store.
func NewSessionMemory(store core.MemoryStore, optFns ...func(o *Options)) *SessionMemory {
	opts := Options{
		Window:          DefaultWindow,
		Shards:          DefaultShards,
		CandidateFactor: DefaultCandidateFactor,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Shards <= 0 {
		opts.Shards = DefaultShards
	}
	if opts.CandidateFactor <= 0 {
		opts.CandidateFactor = DefaultCandidateFactor
	}
	opts.Logger = logging.OrNoOp(opts.Logger)

	shards := make([]*shard, opts.Shards)
	for i := range shards {
		shards[i] = &shard{sessions: make(map[string][]core.MemoryRecord)}
	}
	return &SessionMemory{store: store, opts: opts, seed: maphash.MakeSeed(), shards: shards}
}

// Window returns the configured per-session cache bound.
func (m *SessionMemory) Window() int { return m.opts.Window }

// Backend returns the durable store.
func (m *SessionMemory) Backend() core.MemoryStore { return m.store }

func (m *SessionMemory) shardFor(sessionID string) *shard {
	return m.shards[maphash.String(m.seed, sessionID)%uint64(len(m.shards))]
}

// Store appends record to its session cache (evicting the oldest entries past
// the window) and then persists it. The cache is not rolled back when the
// durable write fails; the failure is returned as core.ErrMemory.
func (m *SessionMemory) Store(ctx context.Context, record core.MemoryRecord) error {
	sh := m.shardFor(record.SessionID)

	sh.mu.Lock()
	records := append(sh.sessions[record.SessionID], record.Clone())
	if over := len(records) - m.opts.Window; over > 0 {
		records = append(records[:0:0], records[over:]...)
	}
	sh.sessions[record.SessionID] = records
	sh.mu.Unlock()

	start := time.Now()
	err := m.store.Store(ctx, record)
	logging.MemoryStore(m.opts.Logger, record.SessionID, string(record.Role), time.Since(start), err)
	if err != nil {
		return core.NewError(core.ErrMemory, "memory.store", record.SessionID, err)
	}
	return nil
}

// RetrieveRecent returns a copy of the session's cached records in
// chronological order. Unknown sessions yield an empty slice.
func (m *SessionMemory) RetrieveRecent(sessionID string) []core.MemoryRecord {
	sh := m.shardFor(sessionID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	records := sh.sessions[sessionID]
	out := make([]core.MemoryRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Search delegates to the durable store; the cache is bypassed.
func (m *SessionMemory) Search(ctx context.Context, sessionID string, queryEmbedding []float32, limit int) ([]core.MemoryRecord, error) {
	records, err := m.store.Search(ctx, sessionID, queryEmbedding, limit)
	if err != nil {
		return nil, core.NewError(core.ErrMemory, "memory.search", sessionID, err)
	}
	return records, nil
}

// SearchDiverse fetches k*CandidateFactor similarity hits from the store and
// re-ranks them with MMRRerank.
func (m *SessionMemory) SearchDiverse(ctx context.Context, sessionID string, queryEmbedding []float32, k int, lambda float32) ([]core.MemoryRecord, error) {
	candidates, err := m.Search(ctx, sessionID, queryEmbedding, k*m.opts.CandidateFactor)
	if err != nil {
		return nil, err
	}
	return MMRRerank(queryEmbedding, candidates, k, lambda), nil
}

// Flush delegates to the durable store.
func (m *SessionMemory) Flush(ctx context.Context) error {
	if err := m.store.Flush(ctx); err != nil {
		return core.NewError(core.ErrMemory, "memory.flush", "", err)
	}
	return nil
}
