package provider

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()

	a, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 8 {
		t.Fatalf("dimension = %d, want 8", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d: %v vs %v", i, a[i], b[i])
		}
	}

	c, err := e.Embed(ctx, "different text")
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

func TestMockEmbedderUnitNorm(t *testing.T) {
	e := NewMockEmbedder(16)
	emb, err := e.Embed(context.Background(), "normalize me")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", math.Sqrt(sum))
	}
}

func TestOpenAIClientEmbed(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer ts.Close()

	c := NewOpenAIClient(ts.URL, "test-key", "", "")
	emb, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/embeddings" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if len(emb) != 3 || emb[0] != 0.1 {
		t.Errorf("embedding = %v", emb)
	}
}

func TestOpenAIClientAnswer(t *testing.T) {
	var gotReq openAIChatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "the answer"}},
			},
		})
	}))
	defer ts.Close()

	c := NewOpenAIClient(ts.URL, "k", "", "")
	answer, err := c.Answer(context.Background(), "what?", "[doc 1] context text")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("got %d messages, want system + user", len(gotReq.Messages))
	}
	if !strings.Contains(gotReq.Messages[1].Content, "[doc 1] context text") {
		t.Errorf("prompt missing context: %q", gotReq.Messages[1].Content)
	}
	if !strings.Contains(gotReq.Messages[1].Content, "what?") {
		t.Errorf("prompt missing query: %q", gotReq.Messages[1].Content)
	}
}

func TestOpenAIClientErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewOpenAIClient(ts.URL, "k", "", "")
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestOllamaClientEmbed(t *testing.T) {
	var gotReq ollamaEmbedRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{1, 2}})
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "custom-model", "")
	emb, err := c.Embed(context.Background(), "text to embed")
	if err != nil {
		t.Fatal(err)
	}
	if gotReq.Model != "custom-model" || gotReq.Prompt != "text to embed" {
		t.Errorf("request = %+v", gotReq)
	}
	if len(emb) != 2 {
		t.Errorf("embedding = %v", emb)
	}
}

func TestOllamaClientAnswer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req ollamaGenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Stream {
			t.Error("stream should be false")
		}
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "generated"})
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "", "")
	answer, err := c.Answer(context.Background(), "q", "ctx")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "generated" {
		t.Errorf("answer = %q", answer)
	}
}
