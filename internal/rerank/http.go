package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPScorer calls an external cross-encoder service. The service accepts
// {"query": ..., "texts": [...]} on POST /rerank and returns
// {"scores": [...]} with one score per text.
type HTTPScorer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPScorer creates a scorer for the cross-encoder service at baseURL.
func NewHTTPScorer(baseURL string, timeoutSec int) (*HTTPScorer, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rerank http provider requires base_url")
	}
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &HTTPScorer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type rerankResponse struct {
	Scores []float64 `json:"scores"`
}

// Score posts the query and texts to the service.
func (s *HTTPScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(rerankRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/rerank", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rerank request failed: %s", resp.Status)
	}
	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(out.Scores) != len(texts) {
		return nil, fmt.Errorf("rerank response count mismatch: got %d, want %d", len(out.Scores), len(texts))
	}
	return out.Scores, nil
}
