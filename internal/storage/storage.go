// Package storage defines the persistence interface for documents and embeddings.
package storage

import (
	"context"

	"github.com/hyperjump/kioku/internal/models"
)

// Storage defines document persistence operations. Documents are insert-only:
// there is no update or delete, and ids are assigned by the backend's
// sequence so concurrent inserts never collide.
type Storage interface {
	// Insert validates and persists a document, returning its new id.
	// The first insert establishes the store's embedding dimension; later
	// inserts with a different dimension fail with ErrDimensionMismatch
	// and leave the store unchanged.
	Insert(ctx context.Context, text string, embedding []float32) (int64, error)

	// List returns document summaries ordered most recent first
	// (created_at descending, id descending) plus the total count
	// ignoring pagination. An out-of-range offset yields an empty page
	// with the correct total.
	List(ctx context.Context, limit, offset int) ([]models.DocumentSummary, int, error)

	// FetchAll returns a full snapshot of all documents with embeddings,
	// most recent first. Used by ranking and clustering.
	FetchAll(ctx context.Context) ([]models.Document, error)

	// Dimension returns the established embedding dimension, or 0 when
	// the store is empty.
	Dimension(ctx context.Context) (int, error)

	// Count returns the total number of documents.
	Count(ctx context.Context) (int, error)

	// Available reports whether the backing store is reachable and enabled.
	Available() bool

	Close() error
}
