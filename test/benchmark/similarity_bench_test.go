// Package benchmark measures ranking and clustering over synthetic corpora.
package benchmark

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hyperjump/kioku/internal/cluster"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/ranking"
)

func corpus(n, dim int) []models.Document {
	rng := rand.New(rand.NewSource(42))
	docs := make([]models.Document, n)
	for i := range docs {
		emb := make([]float32, dim)
		for j := range emb {
			emb[j] = rng.Float32()*2 - 1
		}
		docs[i] = models.Document{
			ID:        int64(i + 1),
			Text:      fmt.Sprintf("document %d", i),
			Embedding: emb,
		}
	}
	return docs
}

func BenchmarkRankingSearch(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			docs := corpus(n, 384)
			query := docs[0].Embedding
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ranking.Search(query, docs, 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Clustering is O(n²) pairwise similarity; this benchmark documents how
// quickly it grows with corpus size.
func BenchmarkClusterBuild(b *testing.B) {
	for _, n := range []int{100, 500, 1000} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			docs := corpus(n, 384)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := cluster.Build(docs, 0.7); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
