// Package vector provides the brute-force cosine ranking shared by the
// collection stores.
package vector

import (
	"math"
	"slices"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// CosineDistance returns 1 - cos(a, b). Zero vectors are maximally distant.
// Vectors of different length are compared over their common prefix.
func CosineDistance(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Candidate is a stored record considered for a query.
// Seq is the insertion order and breaks distance ties.
type Candidate struct {
	Record domain.Record
	Seq    int64
}

// Rank returns the k candidates nearest to query as a QueryResult ordered
// by ascending distance. k <= 0 yields an empty result.
func Rank(query []float32, candidates []Candidate, k int) *domain.QueryResult {
	type scored struct {
		c        *Candidate
		distance float64
	}

	all := make([]scored, len(candidates))
	for i := range candidates {
		all[i] = scored{c: &candidates[i], distance: CosineDistance(query, candidates[i].Record.Embedding)}
	}
	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		case a.c.Seq < b.c.Seq:
			return -1
		case a.c.Seq > b.c.Seq:
			return 1
		default:
			return 0
		}
	})

	k = max(0, min(k, len(all)))
	result := &domain.QueryResult{
		IDs:       make([]string, 0, k),
		Documents: make([]string, 0, k),
		Metadatas: make([]domain.ChunkMetadata, 0, k),
		Distances: make([]float64, 0, k),
	}
	for _, s := range all[:k] {
		result.IDs = append(result.IDs, s.c.Record.ID)
		result.Documents = append(result.Documents, s.c.Record.Document)
		result.Metadatas = append(result.Metadatas, s.c.Record.Metadata)
		result.Distances = append(result.Distances, s.distance)
	}
	return result
}
