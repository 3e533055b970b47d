// Package rerank provides relevance re-scoring of retrieved chunks against
// the original query.
package rerank

import (
	"context"
	"fmt"
)

// Scorer assigns each text a relevance score in [0,1] for the query.
// The returned slice has one score per input text, in order.
type Scorer interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// New creates a scorer for the given provider identifier.
func New(provider, baseURL string, timeoutSec int) (Scorer, error) {
	switch provider {
	case "lexical", "":
		return NewLexicalScorer(), nil
	case "http":
		return NewHTTPScorer(baseURL, timeoutSec)
	default:
		return nil, fmt.Errorf("unknown rerank provider: %q (supported: lexical, http)", provider)
	}
}
