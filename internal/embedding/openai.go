package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hyperjump/kotae/pkg/utils"
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	cache      *Cache
	client     *http.Client
}

// OpenAIOptions configures the HTTP embedder. Zero values fall back to
// api.openai.com, text-embedding-3-small and a 30s timeout.
type OpenAIOptions struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	CacheSize  int
	Timeout    time.Duration
}

// NewOpenAIEmbedder creates an HTTP embedder. The API key may be empty for
// local OpenAI-compatible servers that do not authenticate.
func NewOpenAIEmbedder(opts OpenAIOptions) (*OpenAIEmbedder, error) {
	if opts.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "text-embedding-3-small"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &OpenAIEmbedder{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		dimensions: opts.Dimensions,
		cache:      NewCache(opts.CacheSize),
		client:     &http.Client{Timeout: opts.Timeout},
	}, nil
}

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding for text, using cache when available.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds all texts in a single request. Cached texts are served
// locally; only misses go over the wire.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var misses []string
	var missIdx []int
	for i, text := range texts {
		if cached, ok := e.cache.Get(text); ok {
			out[i] = cached
		} else {
			misses = append(misses, text)
			missIdx = append(missIdx, i)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	resp, err := e.request(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(misses) {
		return nil, fmt.Errorf("embeddings response count mismatch: got %d, want %d", len(resp.Data), len(misses))
	}
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(misses) {
			return nil, fmt.Errorf("embeddings response index out of range: %d", d.Index)
		}
		if len(d.Embedding) != e.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(d.Embedding), e.dimensions)
		}
		vec := make([]float32, e.dimensions)
		copy(vec, d.Embedding)
		utils.NormalizeL2(vec)
		e.cache.Set(misses[d.Index], vec)
		out[missIdx[d.Index]] = vec
	}
	for i, vec := range out {
		if vec == nil {
			return nil, fmt.Errorf("no embedding returned for input %d", i)
		}
	}
	return out, nil
}

// request posts the batch, retrying once on transport errors and 5xx.
func (e *OpenAIEmbedder) request(ctx context.Context, input []string) (*embeddingsResponse, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
		resp, retryable, err := e.do(ctx, input)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (e *OpenAIEmbedder) do(ctx context.Context, input []string) (*embeddingsResponse, bool, error) {
	data, err := json.Marshal(embeddingsRequest{Input: input, Model: e.model})
	if err != nil {
		return nil, false, fmt.Errorf("marshal embeddings request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("build embeddings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("embeddings request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	var out embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("decode embeddings response: %w", err)
	}
	return &out, false, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for the HTTP embedder.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
