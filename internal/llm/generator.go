// Package llm provides answer generation over an OpenAI-compatible chat API.
package llm

import "context"

// Generator produces an answer from a system prompt and a user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Close() error
}
