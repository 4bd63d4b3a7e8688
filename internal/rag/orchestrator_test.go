package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/provider"
)

// memStore is an in-memory Storage for pipeline tests. Documents are held
// newest first, matching the SQLite scan order.
type memStore struct {
	docs      []models.Document
	nextID    int64
	available bool
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, available: true}
}

func (m *memStore) Insert(ctx context.Context, text string, embedding []float32) (int64, error) {
	if !m.available {
		return 0, models.ErrStoreUnavailable
	}
	if len(m.docs) > 0 && len(m.docs[0].Embedding) != len(embedding) {
		return 0, models.ErrDimensionMismatch
	}
	id := m.nextID
	m.nextID++
	doc := models.Document{ID: id, Text: text, Embedding: embedding, CreatedAt: time.Now()}
	m.docs = append([]models.Document{doc}, m.docs...)
	return id, nil
}

func (m *memStore) List(ctx context.Context, limit, offset int) ([]models.DocumentSummary, int, error) {
	if !m.available {
		return nil, 0, models.ErrStoreUnavailable
	}
	summaries := make([]models.DocumentSummary, 0)
	for i := offset; i < len(m.docs) && len(summaries) < limit; i++ {
		summaries = append(summaries, m.docs[i].Summary())
	}
	return summaries, len(m.docs), nil
}

func (m *memStore) FetchAll(ctx context.Context) ([]models.Document, error) {
	if !m.available {
		return nil, models.ErrStoreUnavailable
	}
	out := make([]models.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *memStore) Dimension(ctx context.Context) (int, error) {
	if len(m.docs) == 0 {
		return 0, nil
	}
	return len(m.docs[0].Embedding), nil
}

func (m *memStore) Count(ctx context.Context) (int, error) { return len(m.docs), nil }
func (m *memStore) Available() bool                        { return m.available }
func (m *memStore) Close() error                           { return nil }

func newTestPipeline(store *memStore, answerer *provider.MockAnswerer) *Pipeline {
	return NewPipeline(provider.NewMockEmbedder(8), answerer, store, zap.NewNop())
}

func TestBuildContext(t *testing.T) {
	results := []models.SearchResult{
		{ID: 5, Text: "first ranked", Similarity: 0.9},
		{ID: 2, Text: "second ranked", Similarity: 0.8},
	}
	got := BuildContext(results)
	want := "[doc 1] first ranked\n\n[doc 2] second ranked"
	if got != want {
		t.Errorf("BuildContext = %q, want %q", got, want)
	}
}

func TestBuildContextEmpty(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("BuildContext(nil) = %q, want empty", got)
	}
	if got := BuildContext([]models.SearchResult{}); got != "" {
		t.Errorf("BuildContext([]) = %q, want empty", got)
	}
}

func TestRegister(t *testing.T) {
	store := newMemStore()
	p := newTestPipeline(store, &provider.MockAnswerer{})
	ctx := context.Background()

	id, err := p.Register(ctx, "some document text")
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if len(store.docs) != 1 || len(store.docs[0].Embedding) != 8 {
		t.Errorf("stored document = %+v", store.docs)
	}
}

func TestRegisterRejectsEmptyText(t *testing.T) {
	p := newTestPipeline(newMemStore(), &provider.MockAnswerer{})
	if _, err := p.Register(context.Background(), "   "); !errors.Is(err, models.ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
}

func TestRegisterUnavailableStore(t *testing.T) {
	store := newMemStore()
	store.available = false
	p := newTestPipeline(store, &provider.MockAnswerer{})
	if _, err := p.Register(context.Background(), "text"); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}
}

func TestAnswerNotFoundShortCircuit(t *testing.T) {
	answerer := &provider.MockAnswerer{Reply: "should not be used"}
	p := newTestPipeline(newMemStore(), answerer)

	result, err := p.Answer(context.Background(), "anything", 5)
	if err != nil {
		t.Fatal(err)
	}
	if result.Answer != NotFoundAnswer {
		t.Errorf("answer = %q, want NotFoundAnswer", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("sources = %v, want empty", result.Sources)
	}
	if len(answerer.Calls) != 0 {
		t.Errorf("answerer was called %d times, want 0", len(answerer.Calls))
	}
}

func TestAnswerUsesRankedContext(t *testing.T) {
	store := newMemStore()
	answerer := &provider.MockAnswerer{Reply: "generated answer"}
	p := newTestPipeline(store, answerer)
	ctx := context.Background()

	if _, err := p.Register(ctx, "the sky is blue"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Register(ctx, "grass is green"); err != nil {
		t.Fatal(err)
	}

	result, err := p.Answer(ctx, "what color is the sky", 2)
	if err != nil {
		t.Fatal(err)
	}
	if result.Answer != "generated answer" {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(result.Sources))
	}
	if len(answerer.Calls) != 1 {
		t.Fatalf("answerer called %d times, want 1", len(answerer.Calls))
	}
	gotContext := answerer.Calls[0][1]
	if !strings.HasPrefix(gotContext, "[doc 1] ") || !strings.Contains(gotContext, "\n\n[doc 2] ") {
		t.Errorf("context = %q, missing positional labels", gotContext)
	}
}

func TestSearchValidation(t *testing.T) {
	p := newTestPipeline(newMemStore(), &provider.MockAnswerer{})
	ctx := context.Background()

	if _, err := p.Search(ctx, "", 5); !errors.Is(err, models.ErrEmptyText) {
		t.Errorf("empty query error = %v, want ErrEmptyText", err)
	}
	if _, err := p.Search(ctx, "query", -1); !errors.Is(err, models.ErrInvalidParameter) {
		t.Errorf("negative topK error = %v, want ErrInvalidParameter", err)
	}
	results, err := p.Search(ctx, "query", 0)
	if err != nil {
		t.Fatalf("topK=0: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("topK=0 returned %d results", len(results))
	}
}
