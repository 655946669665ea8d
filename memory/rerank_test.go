package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/internal/testutil"
)

// -------------------- Cosine Tests --------------------

func TestCosineSimilarity_Symmetric(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 2, 3}, {4, 5, 6}},
		{{1, 0}, {0, 1}},
		{{-1, 0.5}, {2, 2}},
		{{0.3, 0.3, 0.9}, {0.3, 0.3, 0.9}},
	}
	for _, p := range pairs {
		assert.InDelta(t, CosineSimilarity(p[0], p[1]), CosineSimilarity(p[1], p[0]), 1e-7)
	}
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{2, 0}, []float32{5, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
}

func TestCosineSimilarity_Fallbacks(t *testing.T) {
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, float32(0), CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1, 2}, []float32{0, 0}))
	assert.Equal(t, float32(0), CosineSimilarity(nil, nil))
}

// -------------------- MMR Tests --------------------

func rec(content string, emb ...float32) core.MemoryRecord {
	b := testutil.NewRecordBuilder("s").User(content)
	if len(emb) > 0 {
		b.Embedding(emb...)
	}
	return b.Build()
}

func contents(recs []core.MemoryRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Content
	}
	return out
}

func TestMMRRerank_LambdaOneIsRelevanceOrder(t *testing.T) {
	query := []float32{1, 0}
	candidates := []core.MemoryRecord{
		rec("far", 0, 1),
		rec("close", 0.9, 0.1),
		rec("exact", 1, 0),
		rec("mid", 0.5, 0.5),
	}

	got := MMRRerank(query, candidates, 4, 1.0)

	assert.Equal(t, []string{"exact", "close", "mid", "far"}, contents(got))
}

func TestMMRRerank_DiversityPrefersDifferentDirection(t *testing.T) {
	query := []float32{1, 1}
	candidates := []core.MemoryRecord{
		rec("a", 1, 0.9),
		rec("a-dup", 1, 0.9),
		rec("b", 0.2, 1),
	}

	got := MMRRerank(query, candidates, 2, 0.3)

	assert.Equal(t, []string{"a", "b"}, contents(got))
}

func TestMMRRerank_SkipsUnembeddedAndClamps(t *testing.T) {
	query := []float32{1, 0}
	candidates := []core.MemoryRecord{
		rec("no-emb-1"),
		rec("x", 1, 0),
		rec("no-emb-2"),
		rec("y", 0, 1),
	}

	got := MMRRerank(query, candidates, 10, 0.5)

	assert.Len(t, got, 2)
	for _, r := range got {
		assert.True(t, r.HasEmbedding())
	}
	assert.Empty(t, MMRRerank(query, []core.MemoryRecord{rec("none")}, 3, 0.5))
	assert.Empty(t, MMRRerank(query, nil, 3, 0.5))
	assert.Empty(t, MMRRerank(query, candidates, 0, 0.5))
}

func TestMMRRerank_TiesGoToFirst(t *testing.T) {
	query := []float32{1, 0}
	candidates := []core.MemoryRecord{
		rec("first", 1, 0),
		rec("second", 1, 0),
	}

	got := MMRRerank(query, candidates, 1, 1.0)

	assert.Equal(t, []string{"first"}, contents(got))
}
