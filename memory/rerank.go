package memory

import (
	"math"

	"github.com/hupe1980/agentkit/core"
)

// CosineSimilarity returns the cosine of the angle between a and b. Vectors of
// different length or with zero magnitude yield 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// MMRRerank selects up to k candidates by Maximal Marginal Relevance.
//
// lambda weighs relevance to the query against similarity to the records
// already picked (1 = pure relevance, 0 = pure diversity). Candidates without
// an embedding are never returned. Ties go to the candidate that appears
// first. Selection is greedy: O(k·n) similarity evaluations.
func MMRRerank(query []float32, candidates []core.MemoryRecord, k int, lambda float32) []core.MemoryRecord {
	k = min(k, len(candidates))
	if k <= 0 {
		return []core.MemoryRecord{}
	}

	relevance := make([]float32, len(candidates))
	eligible := make([]bool, len(candidates))
	for i, c := range candidates {
		if c.HasEmbedding() {
			eligible[i] = true
			relevance[i] = CosineSimilarity(query, c.Embedding)
		}
	}

	selected := make([]core.MemoryRecord, 0, k)
	for len(selected) < k {
		best := -1
		var bestScore float32
		for i, c := range candidates {
			if !eligible[i] {
				continue
			}
			score := relevance[i]
			if len(selected) > 0 {
				maxSim := float32(math.Inf(-1))
				for _, s := range selected {
					maxSim = max(maxSim, CosineSimilarity(c.Embedding, s.Embedding))
				}
				score = lambda*relevance[i] - (1-lambda)*maxSim
			}
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		eligible[best] = false
		selected = append(selected, candidates[best])
	}
	return selected
}
