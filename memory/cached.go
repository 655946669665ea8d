package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hupe1980/agentkit/core"
)

// CacheOptions configures a CachedStore.
type CacheOptions struct {
	// MaxEntries approximates how many search results the cache keeps.
	MaxEntries int64
	// TTL expires cached results; zero keeps them until evicted or invalidated.
	TTL time.Duration
}

// CachedStore puts a ristretto cache in front of another store's Search.
// Writes to a session bump that session's generation, so cached results never
// outlive a Store call. Retrieve and Flush pass straight through.
type CachedStore struct {
	next  core.MemoryStore
	cache *ristretto.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

// NewCachedStore wraps next.
func NewCachedStore(next core.MemoryStore, optFns ...func(o *CacheOptions)) (*CachedStore, error) {
	opts := CacheOptions{MaxEntries: 10_000}
	for _, fn := range optFns {
		fn(&opts)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: opts.MaxEntries * 10,
		MaxCost:     opts.MaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create search cache", goerr.V("max_entries", opts.MaxEntries))
	}
	return &CachedStore{next: next, cache: cache, ttl: opts.TTL, generations: map[string]uint64{}}, nil
}

// Store writes through and invalidates the session's cached searches.
func (c *CachedStore) Store(ctx context.Context, record core.MemoryRecord) error {
	err := c.next.Store(ctx, record)
	c.mu.Lock()
	c.generations[record.SessionID]++
	c.mu.Unlock()
	return err
}

// Retrieve passes through to the wrapped store.
func (c *CachedStore) Retrieve(ctx context.Context, sessionID string, limit int) ([]core.MemoryRecord, error) {
	return c.next.Retrieve(ctx, sessionID, limit)
}

// Search serves repeated identical queries from the cache.
func (c *CachedStore) Search(ctx context.Context, sessionID string, queryEmbedding []float32, limit int) ([]core.MemoryRecord, error) {
	key := c.key(sessionID, queryEmbedding, limit)
	if v, ok := c.cache.Get(key); ok {
		return cloneRecords(v.([]core.MemoryRecord)), nil
	}
	records, err := c.next.Search(ctx, sessionID, queryEmbedding, limit)
	if err != nil {
		return nil, err
	}
	if c.ttl > 0 {
		c.cache.SetWithTTL(key, cloneRecords(records), 1, c.ttl)
	} else {
		c.cache.Set(key, cloneRecords(records), 1)
	}
	c.cache.Wait()
	return records, nil
}

// Flush passes through to the wrapped store.
func (c *CachedStore) Flush(ctx context.Context) error { return c.next.Flush(ctx) }

// Close releases the cache.
func (c *CachedStore) Close() { c.cache.Close() }

func (c *CachedStore) key(sessionID string, emb []float32, limit int) string {
	c.mu.Lock()
	gen := c.generations[sessionID]
	c.mu.Unlock()

	h := fnv.New64a()
	var buf [4]byte
	for _, f := range emb {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		_, _ = h.Write(buf[:])
	}
	return fmt.Sprintf("%s|%d|%d|%x", sessionID, gen, limit, h.Sum64())
}

func cloneRecords(in []core.MemoryRecord) []core.MemoryRecord {
	out := make([]core.MemoryRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

var _ core.MemoryStore = (*CachedStore)(nil)
