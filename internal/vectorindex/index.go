// Package vectorindex provides a brute-force cosine similarity index over
// chunk embeddings for a single document.
package vectorindex

import (
	"errors"
	"math"
	"sort"
)

var ErrLengthMismatch = errors.New("chunks and vectors length mismatch")

// Result is one retrieved chunk with its similarity score.
type Result struct {
	Chunk    string  `json:"chunk"`
	Position int     `json:"position"`
	Score    float32 `json:"score"`
}

// Index holds parallel chunk texts and embedding vectors.
type Index struct {
	chunks  []string
	vectors [][]float32
}

// New builds an index from parallel slices of chunk texts and embeddings.
func New(chunks []string, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, ErrLengthMismatch
	}
	return &Index{chunks: chunks, vectors: vectors}, nil
}

// Len reports the number of indexed chunks.
func (idx *Index) Len() int { return len(idx.chunks) }

// Search returns up to k chunks ordered by descending cosine similarity to
// the query embedding. Ties keep source order so results stay deterministic.
func (idx *Index) Search(query []float32, k int) []Result {
	if k <= 0 || len(idx.chunks) == 0 {
		return nil
	}
	results := make([]Result, len(idx.chunks))
	for i := range idx.chunks {
		results[i] = Result{
			Chunk:    idx.chunks[i],
			Position: i,
			Score:    CosineSimilarity(query, idx.vectors[i]),
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// CosineSimilarity returns the cosine of the angle between a and b,
// or 0 for empty or mismatched vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
