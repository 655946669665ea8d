package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/testutil"
)

func TestDecode(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	emb := "[1,0.5,0]"
	rec, err := decode("7f2c1d8e-0d8b-4f5e-9c55-6a2b7c1e9a10", "s", "assistant", "hi", 0.5, ts, []byte(`{"k":"v"}`), &emb)
	require.NoError(t, err)
	assert.Equal(t, "7f2c1d8e-0d8b-4f5e-9c55-6a2b7c1e9a10", rec.ID.String())
	assert.Equal(t, core.RoleAssistant, rec.Role)
	assert.Equal(t, map[string]string{"k": "v"}, rec.Metadata)
	assert.Equal(t, []float32{1, 0.5, 0}, rec.Embedding)

	rec, err = decode("7f2c1d8e-0d8b-4f5e-9c55-6a2b7c1e9a10", "s", "user", "hi", 0.5, ts, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, rec.Metadata)
	assert.False(t, rec.HasEmbedding())

	_, err = decode("not-a-uuid", "s", "user", "", 0, ts, nil, nil)
	assert.Error(t, err)
}

func TestStore_NonPositiveLimit(t *testing.T) {
	ctx := context.Background()
	// No pool: a non-positive limit must return before touching the database.
	s := &Store{}

	got, err := s.Retrieve(ctx, "s", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Search(ctx, "s", []float32{1, 0}, -1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestStore_Integration runs against a live database when
// AGENTKIT_TEST_POSTGRES_URL is set.
func TestStore_Integration(t *testing.T) {
	url := os.Getenv("AGENTKIT_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("AGENTKIT_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, url, func(o *Options) { o.Table = "agentkit_test_memories" })
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.EnsureSchema(ctx, 2))

	session := "pg-" + time.Now().Format("150405.000000")
	base := time.Now().UTC().Truncate(time.Microsecond)
	recs := []core.MemoryRecord{
		testutil.NewRecordBuilder(session).User("a").At(base).Embedding(1, 0).Build(),
		testutil.NewRecordBuilder(session).Assistant("b").At(base.Add(time.Second)).Embedding(0, 1).Meta("k", "v").Build(),
		testutil.NewRecordBuilder(session).User("c").At(base.Add(2 * time.Second)).Build(),
	}
	for _, r := range recs {
		require.NoError(t, s.Store(ctx, r))
	}

	got, err := s.Retrieve(ctx, session, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Content)
	assert.Equal(t, "v", got[1].Metadata["k"])

	hits, err := s.Search(ctx, session, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].Content)
	assert.NoError(t, s.Flush(ctx))
}
