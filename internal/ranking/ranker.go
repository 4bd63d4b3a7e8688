// Package ranking scores candidate documents against a query vector and
// returns the top-K by cosine similarity.
package ranking

import (
	"fmt"
	"sort"

	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/vector"
)

// Search computes cosine similarity for every candidate against query and
// returns the topK results sorted by similarity descending, ties broken by
// ascending id so the ordering is deterministic. An empty candidate set or
// topK of zero yields an empty result, not an error.
//
// Exact brute-force scan: O(n·d) similarity work plus an O(n log n) sort.
// Fine at the corpus sizes this store targets; an approximate index could
// replace this behind the same signature without changing exact-mode
// ordering semantics.
func Search(query []float32, candidates []models.Document, topK int) ([]models.SearchResult, error) {
	if topK < 0 {
		return nil, fmt.Errorf("topK %d: %w", topK, models.ErrInvalidParameter)
	}
	for i := range candidates {
		if len(candidates[i].Embedding) != len(query) {
			return nil, fmt.Errorf("query dimension %d, document %d has %d: %w",
				len(query), candidates[i].ID, len(candidates[i].Embedding), models.ErrDimensionMismatch)
		}
	}
	if topK == 0 || len(candidates) == 0 {
		return []models.SearchResult{}, nil
	}

	results := make([]models.SearchResult, len(candidates))
	for i := range candidates {
		results[i] = models.SearchResult{
			ID:         candidates[i].ID,
			Text:       candidates[i].Text,
			Similarity: vector.Cosine(query, candidates[i].Embedding),
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}
