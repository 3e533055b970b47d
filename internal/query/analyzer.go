// Package query provides query understanding: intent classification,
// complexity scoring, expansion, and decomposition.
package query

import (
	"sort"
	"strings"
	"unicode"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

// Analyzer enhances user queries before retrieval. All of its work is
// best-effort: a query it cannot make sense of degrades to intent unknown
// and complexity 1 rather than blocking retrieval.
type Analyzer struct {
	technicalTerms map[string]struct{}
	vocabSorted    []string
	synonyms       map[string][]string
}

// NewAnalyzer creates a query analyzer from configuration. Empty lexicons
// fall back to built-in defaults.
func NewAnalyzer(cfg config.QueryConfig) *Analyzer {
	terms := cfg.TechnicalTerms
	if len(terms) == 0 {
		terms = defaultTechnicalTerms
	}
	termSet := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		termSet[strings.ToLower(t)] = struct{}{}
	}
	sorted := make([]string, 0, len(termSet))
	for t := range termSet {
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	syn := cfg.Synonyms
	if len(syn) == 0 {
		syn = defaultSynonyms
	}
	return &Analyzer{technicalTerms: termSet, vocabSorted: sorted, synonyms: syn}
}

// Analyze classifies, expands, and optionally decomposes a query.
func (a *Analyzer) Analyze(queryText string) *models.EnhancedQuery {
	tokens := tokenize(queryText)

	ctx := models.QueryContext{
		OriginalQuery: queryText,
		Intent:        models.IntentUnknown,
		Complexity:    1,
	}
	if len(tokens) > 0 {
		ctx.IsTechnical = a.isTechnical(tokens)
		ctx.Intent = a.ClassifyIntent(queryText)
		ctx.Complexity = a.ComputeComplexity(tokens)
		ctx.DomainTerms = a.domainTerms(tokens)
	}

	enhanced := &models.EnhancedQuery{
		Original: queryText,
		Expanded: a.ExpandQuery(tokens, ctx),
		Context:  ctx,
		Keywords: contentTokens(tokens),
	}
	if ctx.Complexity > 2 {
		if subs := a.Decompose(tokens, ctx); len(subs) > 1 {
			enhanced.SubQueries = subs
		}
	}
	return enhanced
}

// ClassifyIntent applies the lexical rule cascade in fixed priority order;
// the first matching rule wins.
func (a *Analyzer) ClassifyIntent(queryText string) models.QueryIntent {
	lower := strings.ToLower(strings.TrimSpace(queryText))
	for _, w := range []string{"what", "who", "when", "where", "which"} {
		if strings.HasPrefix(lower, w) {
			return models.IntentFactual
		}
	}
	for _, w := range []string{"how", "why", "explain", "describe"} {
		if strings.HasPrefix(lower, w) {
			return models.IntentConceptual
		}
	}
	for _, w := range []string{"compare", "difference", "versus", "vs"} {
		if strings.Contains(lower, w) {
			return models.IntentComparative
		}
	}
	for _, w := range []string{"analyze", "evaluate", "assess", "examine"} {
		if strings.Contains(lower, w) {
			return models.IntentAnalytical
		}
	}
	if a.isTechnical(tokenize(lower)) {
		return models.IntentTechnical
	}
	return models.IntentUnknown
}

// ComputeComplexity scores a query 1-5. The score only grows as factors
// accumulate: technical-term density, a subordinate clause marker, and
// multiple independent clauses.
func (a *Analyzer) ComputeComplexity(tokens []string) int {
	complexity := 1

	technical := 0
	for _, t := range tokens {
		if _, ok := a.technicalTerms[t]; ok {
			technical++
		}
	}
	bump := technical / 2
	if bump > 2 {
		bump = 2
	}
	complexity += bump

	for _, t := range tokens {
		if _, ok := subordinateMarkers[t]; ok {
			complexity++
			break
		}
	}

	if independentClauses(tokens) > 1 {
		complexity++
	}

	if complexity > 5 {
		complexity = 5
	}
	return complexity
}

// independentClauses counts token runs of at least three tokens separated
// by coordinating conjunctions, a lexical stand-in for counting root verbs.
func independentClauses(tokens []string) int {
	count := 0
	run := 0
	for _, t := range tokens {
		if t == "and" || t == "or" || t == "but" || t == ";" {
			if run >= 3 {
				count++
			}
			run = 0
			continue
		}
		run++
	}
	if run >= 3 {
		count++
	}
	return count
}

func (a *Analyzer) isTechnical(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := a.technicalTerms[t]; ok {
			return true
		}
	}
	return false
}

func (a *Analyzer) domainTerms(tokens []string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, t := range tokens {
		if _, ok := a.technicalTerms[t]; !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// tokenize lowercases and splits a query, trimming edge punctuation but
// keeping standalone punctuation tokens for boundary detection.
func tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		trimmed := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) && r != '-' && r != '_'
		})
		if trimmed != "" {
			tokens = append(tokens, trimmed)
		}
		// A clause-ending punctuation mark becomes its own token.
		if last := field[len(field)-1]; last == ';' || last == ',' || last == '.' || last == ':' || last == '?' || last == '!' {
			tokens = append(tokens, string(last))
		}
	}
	return tokens
}

// contentTokens filters out stopwords and punctuation tokens.
func contentTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if isStopword(t) || isPunctToken(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isPunctToken(t string) bool {
	for _, r := range t {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return len(t) > 0
}
