package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultOllamaBaseURL        = "http://localhost:11434"
	defaultOllamaEmbeddingModel = "nomic-embed-text"
	defaultOllamaChatModel      = "llama3.2"
)

// OllamaClient implements Embedder and Answerer against a local Ollama server.
type OllamaClient struct {
	baseURL        string
	embeddingModel string
	chatModel      string
	client         *http.Client
}

// NewOllamaClient creates a client. Empty arguments use the Ollama defaults.
func NewOllamaClient(baseURL, embeddingModel, chatModel string) *OllamaClient {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if embeddingModel == "" {
		embeddingModel = defaultOllamaEmbeddingModel
	}
	if chatModel == "" {
		chatModel = defaultOllamaChatModel
	}
	return &OllamaClient{
		baseURL:        baseURL,
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates an embedding for a single text.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp ollamaEmbedResponse
	err := c.post(ctx, "/api/embeddings", ollamaEmbedRequest{
		Model:  c.embeddingModel,
		Prompt: text,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embedding: empty embedding")
	}
	return resp.Embedding, nil
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Answer generates an answer to query using contextText as reference material.
func (c *OllamaClient) Answer(ctx context.Context, query, contextText string) (string, error) {
	prompt := fmt.Sprintf(
		"Answer the question using the reference information below.\n\n[Reference]\n%s\n\n[Question]\n%s\n\n[Answer]",
		contextText, query,
	)
	var resp ollamaGenerateResponse
	err := c.post(ctx, "/api/generate", ollamaGenerateRequest{
		Model:  c.chatModel,
		Prompt: prompt,
		Stream: false,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return resp.Response, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
