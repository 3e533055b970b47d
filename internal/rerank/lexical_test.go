package rerank

import (
	"context"
	"math"
	"testing"
)

func TestLexicalScorerFullMatch(t *testing.T) {
	s := NewLexicalScorer()
	scores, err := s.Score(context.Background(), "hybrid search",
		[]string{"hybrid search engines fuse results from two indexes"})
	if err != nil {
		t.Fatal(err)
	}
	// Full coverage, in order, early match.
	if math.Abs(scores[0]-1.0) > 1e-9 {
		t.Errorf("score = %f, want 1.0", scores[0])
	}
}

func TestLexicalScorerNoMatch(t *testing.T) {
	s := NewLexicalScorer()
	scores, err := s.Score(context.Background(), "hybrid search",
		[]string{"completely unrelated prose about gardening"})
	if err != nil {
		t.Fatal(err)
	}
	if scores[0] != 0 {
		t.Errorf("score = %f, want 0", scores[0])
	}
}

func TestLexicalScorerPartialLateMatch(t *testing.T) {
	s := NewLexicalScorer()
	text := "one two three four five six seven eight nine ten search"
	scores, err := s.Score(context.Background(), "hybrid search", []string{text})
	if err != nil {
		t.Fatal(err)
	}
	// Half the terms matched, out of the first quarter: coverage only.
	if math.Abs(scores[0]-0.35) > 1e-9 {
		t.Errorf("score = %f, want 0.35", scores[0])
	}
}

func TestLexicalScorerOrderBonus(t *testing.T) {
	s := NewLexicalScorer()
	inOrder := "padding padding padding padding padding padding alpha more beta"
	outOfOrder := "padding padding padding padding padding padding beta more alpha"
	scores, err := s.Score(context.Background(), "alpha beta", []string{inOrder, outOfOrder})
	if err != nil {
		t.Fatal(err)
	}
	if scores[0] <= scores[1] {
		t.Errorf("in-order text should score higher: %f vs %f", scores[0], scores[1])
	}
}

func TestLexicalScorerRanksRelevantFirst(t *testing.T) {
	s := NewLexicalScorer()
	scores, err := s.Score(context.Background(), "context window budget", []string{
		"the context window budget bounds how much text reaches generation",
		"chunking splits documents into spans",
	})
	if err != nil {
		t.Fatal(err)
	}
	if scores[0] <= scores[1] {
		t.Errorf("relevant text should outscore irrelevant: %v", scores)
	}
}

func TestNewScorerFactory(t *testing.T) {
	if _, err := New("lexical", "", 0); err != nil {
		t.Errorf("lexical: %v", err)
	}
	if _, err := New("", "", 0); err != nil {
		t.Errorf("empty provider should default: %v", err)
	}
	if _, err := New("http", "", 0); err == nil {
		t.Error("http provider without base_url should fail")
	}
	if _, err := New("http", "http://localhost:9000", 5); err != nil {
		t.Errorf("http with base_url: %v", err)
	}
	if _, err := New("bogus", "", 0); err == nil {
		t.Error("unknown provider should fail")
	}
}
