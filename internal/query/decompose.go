package query

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// Decompose splits a complex query into sub-queries at clause boundaries
// (coordinating conjunctions, subordinating markers, punctuation). A run is
// emitted only when it exceeds two tokens. Queries with complexity 2 or
// lower, and queries with no usable boundary, come back as a single entry.
func (a *Analyzer) Decompose(tokens []string, ctx models.QueryContext) []string {
	if ctx.Complexity <= 2 {
		return []string{ctx.OriginalQuery}
	}

	var subQueries []string
	var run []string
	flush := func() {
		if len(run) > 2 {
			subQueries = append(subQueries, strings.Join(run, " "))
		}
		run = nil
	}

	for _, t := range tokens {
		if isPunctToken(t) {
			flush()
			continue
		}
		if _, boundary := clauseBoundaries[t]; boundary {
			flush()
			continue
		}
		run = append(run, t)
	}
	flush()

	if len(subQueries) == 0 {
		return []string{ctx.OriginalQuery}
	}
	return subQueries
}
