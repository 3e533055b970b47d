// Package respond selects a response style, builds generation prompts and
// packages the final answer with source attribution.
package respond

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

var (
	detailedTriggers  = []string{"explain in detail", "elaborate", "comprehensive"}
	conciseTriggers   = []string{"briefly", "quick", "short"}
	technicalTriggers = []string{"technical", "specification", "implementation"}
	simpleTriggers    = []string{"simple", "basic", "explain like"}
)

// SelectStyle picks a response style from explicit phrasing in the query,
// falling back to the query context: technical queries get technical
// answers, everything else gets detailed ones.
func SelectStyle(query string, queryCtx models.QueryContext) models.ResponseStyle {
	lower := strings.ToLower(query)
	if containsAny(lower, detailedTriggers) {
		return models.StyleDetailed
	}
	if containsAny(lower, conciseTriggers) {
		return models.StyleConcise
	}
	if containsAny(lower, technicalTriggers) {
		return models.StyleTechnical
	}
	if containsAny(lower, simpleTriggers) {
		return models.StyleSimple
	}
	if queryCtx.IsTechnical {
		return models.StyleTechnical
	}
	return models.StyleDetailed
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
