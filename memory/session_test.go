package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/testutil"
	"github.com/hupe1980/agentkit/logging"
)

func newSessionMemory(window int) (*SessionMemory, *InMemoryStore) {
	store := NewInMemoryStore()
	return NewSessionMemory(store, func(o *Options) { o.Window = window }), store
}

func TestSessionMemory_WindowScenario(t *testing.T) {
	ctx := context.Background()
	mem, _ := newSessionMemory(2)

	a := testutil.NewRecordBuilder("s").User("A").Build()
	b := testutil.NewRecordBuilder("s").Assistant("B").Build()
	c := testutil.NewRecordBuilder("s").User("C").Build()
	for _, r := range []core.MemoryRecord{a, b, c} {
		require.NoError(t, mem.Store(ctx, r))
	}

	got := mem.RetrieveRecent("s")
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, c.ID, got[1].ID)
}

func TestSessionMemory_WindowBoundHolds(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct{ n, w int }{{0, 3}, {2, 3}, {3, 3}, {7, 3}, {20, 1}} {
		t.Run(fmt.Sprintf("n=%d,w=%d", tc.n, tc.w), func(t *testing.T) {
			mem, store := newSessionMemory(tc.w)
			var stored []core.MemoryRecord
			for i := 0; i < tc.n; i++ {
				r := testutil.NewRecordBuilder("s").User(fmt.Sprint(i)).Build()
				stored = append(stored, r)
				require.NoError(t, mem.Store(ctx, r))
			}

			got := mem.RetrieveRecent("s")
			want := stored[max(0, tc.n-tc.w):]
			require.Len(t, got, min(tc.n, tc.w))
			for i := range want {
				assert.Equal(t, want[i].ID, got[i].ID)
			}
			// eviction never touches the durable store
			assert.Equal(t, tc.n, store.Len("s"))
		})
	}
}

func TestSessionMemory_UnknownSessionEmpty(t *testing.T) {
	mem, _ := newSessionMemory(3)
	got := mem.RetrieveRecent("nobody")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSessionMemory_RetrieveRecentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	mem, _ := newSessionMemory(3)
	require.NoError(t, mem.Store(ctx, testutil.NewRecordBuilder("s").User("x").Meta("k", "v").Build()))

	got := mem.RetrieveRecent("s")
	got[0].Content = "mutated"
	got[0].Metadata["k"] = "mutated"

	again := mem.RetrieveRecent("s")
	assert.Equal(t, "x", again[0].Content)
	assert.Equal(t, "v", again[0].Metadata["k"])
}

func TestSessionMemory_StoreFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	mem := NewSessionMemory(testutil.FailingStore{Err: boom})

	err := mem.Store(ctx, testutil.NewRecordBuilder("s").User("hello").Build())

	assert.ErrorIs(t, err, core.ErrMemory)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mem.RetrieveRecent("s"), 1)
}

func TestSessionMemory_StoreReportsToObserver(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := logging.NewRuntimeLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json", Output: &buf})

	mem := NewSessionMemory(NewInMemoryStore(), func(o *Options) { o.Logger = logger })
	require.NoError(t, mem.Store(ctx, testutil.NewRecordBuilder("s").Assistant("ok").Build()))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "memory.store.success", entry["msg"])
	assert.Equal(t, "s", entry["session_id"])
	assert.Equal(t, "assistant", entry["role"])

	buf.Reset()
	failing := NewSessionMemory(testutil.FailingStore{Err: errors.New("disk full")}, func(o *Options) { o.Logger = logger })
	require.Error(t, failing.Store(ctx, testutil.NewRecordBuilder("s").User("lost").Build()))

	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "memory.store.error", entry["msg"])
	assert.Equal(t, "disk full", entry["error"])
}

func TestSessionMemory_SearchAndFlushDelegate(t *testing.T) {
	ctx := context.Background()
	store := &testutil.MockStore{}
	hit := testutil.NewRecordBuilder("s").User("hit").Embedding(1, 0).Build()
	store.On("Search", mock.Anything, "s", []float32{1, 0}, 3).Return([]core.MemoryRecord{hit}, nil)
	store.On("Flush", mock.Anything).Return(errors.New("offline"))

	mem := NewSessionMemory(store)
	got, err := mem.Search(ctx, "s", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, hit.ID, got[0].ID)

	assert.ErrorIs(t, mem.Flush(ctx), core.ErrMemory)
	store.AssertExpectations(t)
}

func TestSessionMemory_SearchDiverse(t *testing.T) {
	ctx := context.Background()
	mem, _ := newSessionMemory(10)
	require.NoError(t, mem.Store(ctx, rec("a", 1, 0.9)))
	require.NoError(t, mem.Store(ctx, rec("a-dup", 1, 0.9)))
	require.NoError(t, mem.Store(ctx, rec("b", 0.2, 1)))

	got, err := mem.SearchDiverse(ctx, "s", []float32{1, 1}, 2, 0.3)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotEqual(t, got[0].Embedding, got[1].Embedding)
}

func TestSessionMemory_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	mem, _ := newSessionMemory(5)
	var wg sync.WaitGroup
	for s := 0; s < 8; s++ {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(session string) {
				defer wg.Done()
				_ = mem.Store(ctx, testutil.NewRecordBuilder(session).User("x").Build())
				_ = mem.RetrieveRecent(session)
			}(fmt.Sprintf("s%d", s))
		}
	}
	wg.Wait()
	for s := 0; s < 8; s++ {
		assert.Len(t, mem.RetrieveRecent(fmt.Sprintf("s%d", s)), 5)
	}
}
