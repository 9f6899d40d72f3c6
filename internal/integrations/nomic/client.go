// Package nomic implements the embedding client against the Nomic Atlas text
// embedding API. It converts free text into fixed-length vectors used for
// similarity search against the vector index.
package nomic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"portfolio-rag-backend/internal/integrations"
)

const defaultBaseURL = "https://api-atlas.nomic.ai"

// Client calls the Nomic Atlas embedding endpoint. It keeps no state between
// calls beyond configuration and a warm HTTP client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	batchSize  int
	httpClient *http.Client
}

// NewClient creates a Nomic embedding client. batchSize caps how many texts go
// into a single provider request; longer inputs are partitioned transparently.
func NewClient(apiKey, model string, batchSize int) *Client {
	if model == "" {
		model = "nomic-embed-text-v1.5"
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Client{
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		model:     model,
		batchSize: batchSize,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// embedRequest is the Nomic Atlas API request format.
type embedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

// embedResponse is the Nomic Atlas API response format.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedQuery embeds a single text, typically the user's question at query time.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(embeddings))
	}
	return embeddings[0], nil
}

// EmbedBatch embeds an arbitrarily long list of texts, partitioning it into
// provider-sized batches and concatenating the results in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := c.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch starting at %d: %w", start, err)
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}

// embed performs one provider call for at most batchSize texts.
func (c *Client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/embedding/text", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Nomic Atlas: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &integrations.ProviderError{Provider: "nomic", Status: resp.StatusCode, Body: string(respBody)}
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("provider returned %d embeddings for %d texts", len(embedResp.Embeddings), len(texts))
	}
	return embedResp.Embeddings, nil
}
