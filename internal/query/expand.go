package query

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// ExpandQuery produces the term-expanded query string. Expanded tokens keep
// set semantics: duplicates are collapsed and the rendered order carries no
// meaning, though it is stable for a given input.
//
// Non-technical queries gain up to three single-word synonyms per content
// token. Technical queries instead gain up to two vocabulary terms sharing
// a substring with an already-expanded term.
func (a *Analyzer) ExpandQuery(tokens []string, ctx models.QueryContext) string {
	seen := make(map[string]struct{})
	var expanded []string
	add := func(term string) {
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		expanded = append(expanded, term)
	}

	content := contentTokens(tokens)
	for _, t := range content {
		add(t)
	}

	if !ctx.IsTechnical {
		for _, t := range content {
			if _, tech := a.technicalTerms[t]; tech {
				continue
			}
			added := 0
			for _, syn := range a.synonyms[t] {
				if added >= 3 {
					break
				}
				syn = strings.ToLower(syn)
				// Skip the original term and multi-word synonyms.
				if syn == t || strings.ContainsAny(syn, " _") {
					continue
				}
				if _, dup := seen[syn]; dup {
					continue
				}
				add(syn)
				added++
			}
		}
	} else {
		related := 0
		for _, term := range a.vocabSorted {
			if related >= 2 {
				break
			}
			if _, dup := seen[term]; dup {
				continue
			}
			for _, e := range expanded {
				if strings.Contains(e, term) || strings.Contains(term, e) {
					add(term)
					related++
					break
				}
			}
		}
	}

	return strings.Join(expanded, " ")
}
