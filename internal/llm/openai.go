package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// OpenAIGenerator calls an OpenAI-compatible /chat/completions endpoint.
type OpenAIGenerator struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// Options configures the chat client. Zero values fall back to
// api.openai.com, gpt-4o-mini and a 60s timeout.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewOpenAIGenerator creates a chat client. The API key may be empty for
// local OpenAI-compatible servers that do not authenticate.
func NewOpenAIGenerator(opts Options) *OpenAIGenerator {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	return &OpenAIGenerator{
		baseURL:     opts.BaseURL,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		client:      &http.Client{Timeout: opts.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate returns the model's answer. Transport errors and 5xx responses
// are retried once.
func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Second):
			}
		}
		answer, retryable, err := g.do(ctx, systemPrompt, userPrompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (g *OpenAIGenerator) do(ctx context.Context, systemPrompt, userPrompt string) (string, bool, error) {
	body := chatRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
	if systemPrompt != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: userPrompt})

	data, err := json.Marshal(body)
	if err != nil {
		return "", false, fmt.Errorf("marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", false, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return "", true, fmt.Errorf("chat request failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return "", false, fmt.Errorf("chat request failed: %s", resp.Status)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", false, errors.New("chat response contained no choices")
	}
	return out.Choices[0].Message.Content, false, nil
}

// Close is a no-op for the HTTP generator.
func (g *OpenAIGenerator) Close() error {
	return nil
}
