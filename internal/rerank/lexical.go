package rerank

import (
	"context"
	"strings"
)

// LexicalScorer scores texts by query term coverage with bonuses for terms
// appearing in order and for early matches. It runs in-process and needs no
// model server.
type LexicalScorer struct{}

// NewLexicalScorer returns the in-process scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Score computes a deterministic relevance score in [0,1] for each text.
func (s *LexicalScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	terms := queryTerms(query)
	scores := make([]float64, len(texts))
	for i, text := range texts {
		scores[i] = s.scoreOne(terms, text)
	}
	return scores, nil
}

// scoreOne is term coverage (up to 0.7), plus 0.2 when all terms appear in
// query order, plus 0.1 when the first matching term occurs in the first
// quarter of the text.
func (s *LexicalScorer) scoreOne(terms []string, text string) float64 {
	if len(terms) == 0 || text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	matched := 0
	firstPos := -1
	for _, term := range terms {
		pos := strings.Index(lower, term)
		if pos == -1 {
			continue
		}
		matched++
		if firstPos == -1 || pos < firstPos {
			firstPos = pos
		}
	}
	if matched == 0 {
		return 0
	}

	score := 0.7 * float64(matched) / float64(len(terms))
	if matched == len(terms) && termsInOrder(terms, lower) {
		score += 0.2
	}
	if firstPos >= 0 && firstPos < len(lower)/4 {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

// termsInOrder reports whether all terms occur left to right in lower.
func termsInOrder(terms []string, lower string) bool {
	offset := 0
	for _, term := range terms {
		pos := strings.Index(lower[offset:], term)
		if pos == -1 {
			return false
		}
		offset += pos + len(term)
	}
	return true
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]{}")
		if len(f) > 1 {
			terms = append(terms, f)
		}
	}
	return terms
}
