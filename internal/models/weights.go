package models

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery rejects query requests with no query text.
var ErrEmptyQuery = errors.New("query cannot be empty")

// SearchWeights configures the relative contribution of the semantic,
// keyword, and rerank stages. A valid configuration has every component
// in [0,1] and a sum within 0.01 of 1.0. Invalid weights are rejected
// before use, never silently normalized.
type SearchWeights struct {
	Semantic float64 `json:"semantic" yaml:"semantic"`
	Keyword  float64 `json:"keyword" yaml:"keyword"`
	Rerank   float64 `json:"rerank" yaml:"rerank"`
}

// WeightValidationError reports a malformed weight configuration.
type WeightValidationError struct {
	Reason string
}

func (e *WeightValidationError) Error() string {
	return "invalid search weights: " + e.Reason
}

// Validate checks the SearchWeights invariants.
func (w SearchWeights) Validate() error {
	for name, v := range map[string]float64{"semantic": w.Semantic, "keyword": w.Keyword, "rerank": w.Rerank} {
		if v < 0 || v > 1 {
			return &WeightValidationError{Reason: fmt.Sprintf("%s must be between 0 and 1, got %.2f", name, v)}
		}
	}
	sum := w.Semantic + w.Keyword + w.Rerank
	if sum < 0.99 || sum > 1.01 {
		return &WeightValidationError{Reason: fmt.Sprintf("weights must sum to 1.0, got %.2f", sum)}
	}
	return nil
}

// DefaultWeights is the balanced configuration used when neither the
// caller nor the intent policy picks something else.
func DefaultWeights() SearchWeights {
	return SearchWeights{Semantic: 0.4, Keyword: 0.4, Rerank: 0.2}
}
