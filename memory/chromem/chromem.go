// Package chromem implements core.MemoryStore on chromem-go, a pure Go
// embedded vector database. Each session gets its own collection; records
// without an embedding are kept only in the per-session log used by Retrieve.
package chromem

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
)

// Options configures New.
type Options struct {
	Logger logging.Logger
}

// Store wraps a chromem.DB.
type Store struct {
	db     *chromem.DB
	logger logging.Logger

	mu          sync.RWMutex
	collections map[string]*chromem.Collection // sessionID -> collection
	logs        map[string][]core.MemoryRecord // sessionID -> records in insertion order
	positions   map[string]int                 // session + record id -> index in the session log
}

// New creates a store backed by a fresh in-memory chromem database.
func New(optFns ...func(o *Options)) *Store {
	return NewFromDB(chromem.NewDB(), optFns...)
}

// NewFromDB creates a store on an existing database.
func NewFromDB(db *chromem.DB, optFns ...func(o *Options)) *Store {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		db:          db,
		logger:      logging.OrNoOp(opts.Logger),
		collections: make(map[string]*chromem.Collection),
		logs:        make(map[string][]core.MemoryRecord),
		positions:   make(map[string]int),
	}
}

func collectionName(sessionID string) string {
	if sessionID == "" {
		return "global"
	}
	return "session_" + sessionID
}

func (s *Store) collection(sessionID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, ok := s.collections[sessionID]
	s.mu.RUnlock()
	if ok {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if col, ok := s.collections[sessionID]; ok {
		return col, nil
	}

	// Embeddings are always supplied by the caller.
	col, err := s.db.GetOrCreateCollection(collectionName(sessionID), nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create collection", goerr.V("session_id", sessionID))
	}
	s.collections[sessionID] = col
	return col, nil
}

// Store appends the record to its session log and indexes its embedding.
// A record whose id was stored before replaces the earlier version.
func (s *Store) Store(ctx context.Context, record core.MemoryRecord) error {
	if record.HasEmbedding() {
		col, err := s.collection(record.SessionID)
		if err != nil {
			return err
		}

		doc := chromem.Document{
			ID:        record.ID.String(),
			Content:   record.Content,
			Embedding: append([]float32(nil), record.Embedding...),
			Metadata:  documentMetadata(record),
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return goerr.Wrap(err, "failed to add document", goerr.V("record_id", record.ID), goerr.V("session_id", record.SessionID))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := record.ID.String()
	if pos, ok := s.lookup(record.SessionID, key); ok {
		s.logs[record.SessionID][pos] = record.Clone()
	} else {
		s.positions[positionKey(record.SessionID, key)] = len(s.logs[record.SessionID])
		s.logs[record.SessionID] = append(s.logs[record.SessionID], record.Clone())
	}

	s.logger.Debug("Stored memory record", "record_id", key, "session_id", record.SessionID, "indexed", record.HasEmbedding())
	return nil
}

func positionKey(sessionID, id string) string { return sessionID + "\x00" + id }

// lookup returns the log position of id within the session. Callers hold mu.
func (s *Store) lookup(sessionID, id string) (int, bool) {
	pos, ok := s.positions[positionKey(sessionID, id)]
	log := s.logs[sessionID]
	if !ok || pos < 0 || pos >= len(log) || log[pos].ID.String() != id {
		return 0, false
	}
	return pos, true
}

func documentMetadata(record core.MemoryRecord) map[string]string {
	md := make(map[string]string, len(record.Metadata)+3)
	for k, v := range record.Metadata {
		md["meta."+k] = v
	}
	md["role"] = string(record.Role)
	md["importance"] = strconv.FormatFloat(float64(record.Importance), 'f', -1, 32)
	md["timestamp"] = record.Timestamp.UTC().Format(time.RFC3339Nano)
	return md
}

// Retrieve returns up to limit records of the session, most recent first.
func (s *Store) Retrieve(_ context.Context, sessionID string, limit int) ([]core.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.logs[sessionID]
	n := min(max(limit, 0), len(records))
	out := make([]core.MemoryRecord, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i].Clone())
	}
	return out, nil
}

// Search queries the session collection by embedding similarity.
func (s *Store) Search(ctx context.Context, sessionID string, queryEmbedding []float32, limit int) ([]core.MemoryRecord, error) {
	s.mu.RLock()
	col, ok := s.collections[sessionID]
	s.mu.RUnlock()
	if !ok || limit <= 0 {
		return []core.MemoryRecord{}, nil
	}

	// chromem-go requires nResults <= collection size
	n := min(limit, col.Count())
	if n == 0 {
		return []core.MemoryRecord{}, nil
	}

	results, err := col.QueryEmbedding(ctx, queryEmbedding, n, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "chromem query failed", goerr.V("session_id", sessionID))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.MemoryRecord, 0, len(results))
	for _, res := range results {
		pos, ok := s.lookup(sessionID, res.ID)
		if !ok {
			s.logger.Warn("Skipping unknown chromem result", "record_id", res.ID, "session_id", sessionID)
			continue
		}
		out = append(out, s.logs[sessionID][pos].Clone())
	}
	return out, nil
}

// Flush is a no-op; chromem keeps everything in memory.
func (s *Store) Flush(context.Context) error { return nil }

// DB exposes the underlying chromem database.
func (s *Store) DB() *chromem.DB { return s.db }

var _ core.MemoryStore = (*Store)(nil)
