// Package rag composes the retrieval pipeline: embed the query, rank
// stored documents, build a context string, and generate an answer.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/provider"
	"github.com/hyperjump/kioku/internal/ranking"
	"github.com/hyperjump/kioku/internal/storage"
)

// NotFoundAnswer is returned when no stored document is relevant to a
// query. The answer provider is not called in that case.
const NotFoundAnswer = "No relevant information was found."

// AnswerResult is the outcome of a full retrieval+generation pass.
type AnswerResult struct {
	Answer  string
	Sources []models.SearchResult
}

// Pipeline is the retrieval orchestrator. Providers are injected at
// construction and the pipeline holds no global state; the caller owns
// provider selection and lifetime.
type Pipeline struct {
	embedder provider.Embedder
	answerer provider.Answerer
	store    storage.Storage
	logger   *zap.Logger
}

// NewPipeline creates an orchestrator with the given collaborators.
func NewPipeline(embedder provider.Embedder, answerer provider.Answerer, store storage.Storage, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		answerer: answerer,
		store:    store,
		logger:   logger,
	}
}

// Register validates text, embeds it, and inserts it into the store,
// returning the new document id.
func (p *Pipeline) Register(ctx context.Context, text string) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, models.ErrEmptyText
	}
	if !p.store.Available() {
		return 0, models.ErrStoreUnavailable
	}
	embedding, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embed text: %w", err)
	}
	id, err := p.store.Insert(ctx, text, embedding)
	if err != nil {
		return 0, err
	}
	p.logger.Info("document registered",
		zap.Int64("id", id),
		zap.Int("dimensions", len(embedding)),
	)
	return id, nil
}

// Search embeds query, ranks all stored documents, and returns the topK
// results without generating an answer.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.ErrEmptyText
	}
	if topK < 0 {
		return nil, fmt.Errorf("topK %d: %w", topK, models.ErrInvalidParameter)
	}
	queryEmbedding, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	docs, err := p.store.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.Search(queryEmbedding, docs, topK)
}

// Answer runs the full pipeline: search, build context, generate. When no
// document matches, the fixed NotFoundAnswer is returned and the answer
// provider is not invoked.
func (p *Pipeline) Answer(ctx context.Context, query string, topK int) (*AnswerResult, error) {
	requestID := uuid.New().String()
	log := p.logger.With(zap.String("request_id", requestID))
	log.Debug("answer pipeline start", zap.String("query", query), zap.Int("top_k", topK))

	sources, err := p.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		log.Debug("no relevant documents")
		return &AnswerResult{Answer: NotFoundAnswer, Sources: []models.SearchResult{}}, nil
	}

	contextText := BuildContext(sources)
	answer, err := p.answerer.Answer(ctx, query, contextText)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	log.Debug("answer pipeline done",
		zap.Int("sources", len(sources)),
		zap.Float64("top_similarity", sources[0].Similarity),
	)
	return &AnswerResult{Answer: answer, Sources: sources}, nil
}

// BuildContext joins result texts in ranked order, each prefixed with a
// 1-based positional label, separated by blank lines. Empty input yields
// an empty string.
func BuildContext(results []models.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[doc %d] %s", i+1, r.Text)
	}
	return strings.Join(parts, "\n\n")
}
