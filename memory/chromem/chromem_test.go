package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/testutil"
)

func TestStore_Retrieve(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, r := range testutil.Records("s", "q1", "a1", "q2") {
		require.NoError(t, s.Store(ctx, r))
	}

	got, err := s.Retrieve(ctx, "s", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q2", got[0].Content)
	assert.Equal(t, "a1", got[1].Content)

	got, err = s.Retrieve(ctx, "other", 2)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()
	s := New()

	recs := []core.MemoryRecord{
		testutil.NewRecordBuilder("s").User("x-axis").Embedding(1, 0).Build(),
		testutil.NewRecordBuilder("s").User("y-axis").Embedding(0, 1).Build(),
		testutil.NewRecordBuilder("s").User("plain").Build(),
		testutil.NewRecordBuilder("t").User("elsewhere").Embedding(1, 0).Build(),
	}
	for _, r := range recs {
		require.NoError(t, s.Store(ctx, r))
	}

	got, err := s.Search(ctx, "s", []float32{0.9, 0.1}, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x-axis", got[0].Content)
	assert.Equal(t, "y-axis", got[1].Content)
	assert.Equal(t, []float32{1, 0}, got[0].Embedding)

	got, err = s.Search(ctx, "s", []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "y-axis", got[0].Content)
}

func TestStore_SearchEmpty(t *testing.T) {
	ctx := context.Background()
	s := New()

	got, err := s.Search(ctx, "none", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Store(ctx, testutil.NewRecordBuilder("s").User("plain").Build()))
	got, err = s.Search(ctx, "s", []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.Search(ctx, "s", []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ReplaceByID(t *testing.T) {
	ctx := context.Background()
	s := New()

	r := testutil.NewRecordBuilder("s").User("draft").Embedding(1, 0).Build()
	require.NoError(t, s.Store(ctx, r))
	r.Content = "final"
	require.NoError(t, s.Store(ctx, r))

	got, err := s.Retrieve(ctx, "s", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "final", got[0].Content)

	hits, err := s.Search(ctx, "s", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "final", hits[0].Content)
}

func TestStore_SameIDAcrossSessions(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Store(ctx, testutil.NewRecordBuilder("b").User("b1").Build()))
	require.NoError(t, s.Store(ctx, testutil.NewRecordBuilder("b").User("b2").Build()))

	r := testutil.NewRecordBuilder("a").User("in a").Embedding(1, 0).Build()
	require.NoError(t, s.Store(ctx, r))

	moved := r.Clone()
	moved.SessionID = "b"
	moved.Content = "in b"
	require.NoError(t, s.Store(ctx, moved))

	hits, err := s.Search(ctx, "a", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "in a", hits[0].Content)

	got, err := s.Retrieve(ctx, "b", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "in b", got[0].Content)
}

func TestDocumentMetadata(t *testing.T) {
	r := testutil.NewRecordBuilder("s").Assistant("x").Importance(0.75).Meta("tool", "calc").Build()
	md := documentMetadata(r)
	assert.Equal(t, "assistant", md["role"])
	assert.Equal(t, "0.75", md["importance"])
	assert.Equal(t, "calc", md["meta.tool"])
	assert.NotEmpty(t, md["timestamp"])
}
