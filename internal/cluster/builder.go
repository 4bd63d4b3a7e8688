// Package cluster groups documents into similarity clusters with a
// single-pass greedy threshold algorithm.
package cluster

import (
	"fmt"

	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/vector"
)

// Build partitions docs into clusters. Documents must be in the store's
// natural scan order (created_at descending); that order decides which
// document seeds each cluster and is preserved within members.
//
// The pass is greedy and not transitive: each unassigned document opens a
// cluster and pulls in every later unassigned document whose similarity to
// the seed meets threshold. Two members of one cluster need not be similar
// to each other, and a document similar to members of an earlier cluster
// but not to its seed ends up elsewhere. This is a deliberate speed-over-
// quality trade-off, kept as-is; a better algorithm belongs behind the
// same contract as an explicit alternative strategy, not a silent change.
//
// Zero-norm embeddings score 0 against everything, so at threshold 0 they
// join the current seed's cluster like any other document.
//
// Cost is O(n²) pairwise similarity evaluations; callers should bound the
// corpus size or rely on their own request timeout.
func Build(docs []models.Document, threshold float64) ([]models.Cluster, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %g not in [0,1]: %w", threshold, models.ErrInvalidParameter)
	}

	assigned := make(map[int64]bool, len(docs))
	clusters := make([]models.Cluster, 0)
	for i := range docs {
		seed := &docs[i]
		if assigned[seed.ID] {
			continue
		}
		assigned[seed.ID] = true
		c := models.Cluster{
			ClusterID: len(clusters) + 1,
			Label:     models.Truncate(seed.Text, models.LabelLength),
			Members:   []models.DocumentSummary{seed.Summary()},
		}
		for j := i + 1; j < len(docs); j++ {
			cand := &docs[j]
			if assigned[cand.ID] {
				continue
			}
			if vector.Cosine(seed.Embedding, cand.Embedding) >= threshold {
				assigned[cand.ID] = true
				c.Members = append(c.Members, cand.Summary())
			}
		}
		clusters = append(clusters, c)
	}
	return clusters, nil
}
