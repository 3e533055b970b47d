package models

import (
	"errors"
	"testing"
)

func TestSearchWeightsValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights SearchWeights
		wantErr bool
	}{
		{"default", DefaultWeights(), false},
		{"semantic heavy", SearchWeights{Semantic: 0.6, Keyword: 0.2, Rerank: 0.2}, false},
		{"sum within tolerance", SearchWeights{Semantic: 0.4, Keyword: 0.4, Rerank: 0.199}, false},
		{"negative component", SearchWeights{Semantic: -0.1, Keyword: 0.9, Rerank: 0.2}, true},
		{"component above one", SearchWeights{Semantic: 1.2, Keyword: 0, Rerank: 0}, true},
		{"sum too low", SearchWeights{Semantic: 0.3, Keyword: 0.3, Rerank: 0.3}, true},
		{"sum too high", SearchWeights{Semantic: 0.5, Keyword: 0.5, Rerank: 0.5}, true},
		{"zero value", SearchWeights{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var verr *WeightValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected WeightValidationError, got %T", err)
				}
			}
		})
	}
}

func TestQueryRequestValidate(t *testing.T) {
	req := &QueryRequest{Query: "how does fusion work"}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	if req.TopK != 5 {
		t.Errorf("expected default TopK 5, got %d", req.TopK)
	}

	req = &QueryRequest{Query: "q", TopK: 500}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	if req.TopK != 50 {
		t.Errorf("expected TopK capped at 50, got %d", req.TopK)
	}

	req = &QueryRequest{}
	if err := req.Validate(); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}
