// Package window selects which retrieved chunks fit the generation context
// budget while avoiding redundant content.
package window

import (
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// Optimizer packs ranked chunks into a word budget, skipping candidates
// whose content largely repeats what is already selected.
type Optimizer struct {
	budget    int
	threshold float64
	logger    *zap.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Optimizer) {
		o.logger = logger
	}
}

// NewOptimizer creates an optimizer with the given word budget and overlap
// threshold. Non-positive budgets fall back to 2000 words; thresholds
// outside (0,1] fall back to 0.7.
func NewOptimizer(budget int, threshold float64, opts ...Option) *Optimizer {
	if budget <= 0 {
		budget = 2000
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.7
	}
	o := &Optimizer{budget: budget, threshold: threshold, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize returns the chunks to hand to generation, preserving the input
// ranking. If everything fits the budget the input is returned unchanged.
// Otherwise chunks are taken greedily in rank order; a chunk is skipped when
// the fraction of its words already covered by the selection exceeds the
// overlap threshold, or when it would blow the budget. The result is never
// empty for non-empty input: the top-ranked chunk is always admitted.
func (o *Optimizer) Optimize(results []*models.RankedResult) []*models.RankedResult {
	if len(results) == 0 {
		return nil
	}

	total := 0
	for _, res := range results {
		total += wordCount(res.Content)
	}
	if total <= o.budget {
		return results
	}

	selected := make([]*models.RankedResult, 0, len(results))
	selectedWords := make(map[string]bool)
	used := 0
	for i, res := range results {
		words := tokenizeWords(res.Content)
		if i > 0 {
			if used+len(words) > o.budget {
				continue
			}
			if overlapFraction(words, selectedWords) > o.threshold {
				o.logger.Debug("skipping redundant chunk", zap.String("chunk_id", res.ChunkID))
				continue
			}
		}
		selected = append(selected, res)
		used += len(words)
		for _, w := range words {
			selectedWords[w] = true
		}
	}
	return selected
}

// Stats summarizes a selected chunk set.
func Stats(results []*models.RankedResult) models.ContextWindowStats {
	stats := models.ContextWindowStats{TotalChunks: len(results)}
	if len(results) == 0 {
		return stats
	}
	var scoreSum float64
	for _, res := range results {
		stats.TotalWords += wordCount(res.Content)
		scoreSum += res.Score
	}
	stats.AvgChunkScore = scoreSum / float64(len(results))
	return stats
}

// overlapFraction is the share of the candidate's unique lowercase words
// already present in the selection.
func overlapFraction(words []string, selected map[string]bool) float64 {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]bool, len(words))
	for _, w := range words {
		unique[w] = true
	}
	shared := 0
	for w := range unique {
		if selected[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(unique))
}

func tokenizeWords(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	return fields
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
