// Package models defines core data structures for documents, search results, and clusters.
package models

import "time"

// PreviewLength is the number of characters kept in a DocumentSummary preview.
const PreviewLength = 100

// LabelLength is the number of characters of the seed text used as a cluster label.
const LabelLength = 30

// Document is a stored text with its embedding. The store owns the canonical
// copy; callers receive snapshots and must not mutate the embedding.
type Document struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentSummary is a read-only projection of a document for listings.
// It is computed on read and never persisted.
type DocumentSummary struct {
	ID        int64     `json:"id"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult is a ranked similarity hit. Similarity is cosine similarity,
// in [-1, 1] (near [0, 1] for text embeddings).
type SearchResult struct {
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// Cluster is a transient grouping of documents produced by a single build
// pass. ClusterID is the 1-based position in formation order; membership is
// threshold- and snapshot-dependent and is not persisted.
type Cluster struct {
	ClusterID int               `json:"cluster_id"`
	Label     string            `json:"label"`
	Members   []DocumentSummary `json:"documents"`
}

// Summary returns the DocumentSummary projection of d: the first
// PreviewLength characters of the text (rune-safe) with an ellipsis marker
// when truncated.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Preview:   Truncate(d.Text, PreviewLength),
		CreatedAt: d.CreatedAt,
	}
}

// Truncate returns the first n runes of s, appending "..." when s is longer.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
