// Package provider defines the embedding and answer generation contracts
// and their OpenAI and Ollama implementations.
package provider

import "context"

// Embedder produces vector embeddings for text. Implementations must return
// vectors of a fixed dimension for the lifetime of the process; the store
// rejects any drift with a dimension mismatch error.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Answerer generates an answer to a query grounded in the given context
// string (the ranked document texts prepared by the rag package).
type Answerer interface {
	Answer(ctx context.Context, query, context string) (string, error)
}
