package service

import (
	"math"
	"sort"

	"github.com/cloo-solutions/docqa/internal/domain"
)

// DefaultTopK is the number of chunks forwarded to the completion call.
const DefaultTopK = 3

// Candidate is one stored chunk vector competing for a place in the context.
type Candidate struct {
	Ref    domain.ChunkRef
	Vector []float32
}

// ScoredCandidate is a ranked candidate.
type ScoredCandidate struct {
	Ref   domain.ChunkRef
	Score float64
}

// CosineSimilarity returns dot(a,b) / (|a||b|). Vectors with zero norm,
// empty vectors and vectors of different dimensions score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every candidate against query and orders them by descending
// similarity. Ties keep their original order.
func Rank(query []float32, candidates []Candidate) []ScoredCandidate {
	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = ScoredCandidate{Ref: c.Ref, Score: CosineSimilarity(query, c.Vector)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// TopK returns at most k leading entries of a ranked slice.
func TopK(ranked []ScoredCandidate, k int) []ScoredCandidate {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(ranked) > k {
		return ranked[:k]
	}
	return ranked
}
