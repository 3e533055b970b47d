package analyzer

import (
	"strings"
	"unicode"
)

// phraseStopwords are tokens that terminate a noun-phrase candidate run.
var phraseStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"been": {}, "has": {}, "have": {}, "had": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "which": {}, "who": {},
	"what": {}, "when": {}, "where": {}, "how": {}, "why": {}, "not": {},
	"no": {}, "can": {}, "will": {}, "would": {}, "should": {}, "could": {},
	"may": {}, "might": {}, "do": {}, "does": {}, "did": {}, "if": {},
	"then": {}, "than": {}, "so": {}, "such": {}, "into": {}, "over": {},
	"under": {}, "about": {}, "between": {}, "through": {}, "their": {},
	"there": {}, "we": {}, "you": {}, "they": {}, "he": {}, "she": {}, "i": {},
}

// KeyPhrases extracts up to max multi-word phrase candidates: maximal runs
// of two to four consecutive content words. A lexical stand-in for noun
// phrase chunking; no parser dependency.
func KeyPhrases(text string, max int) []string {
	words := strings.Fields(text)
	var phrases []string
	seen := make(map[string]struct{})
	var run []string

	flush := func() {
		if len(run) >= 2 {
			if len(run) > 4 {
				run = run[:4]
			}
			phrase := strings.Join(run, " ")
			if _, dup := seen[phrase]; !dup {
				seen[phrase] = struct{}{}
				phrases = append(phrases, phrase)
			}
		}
		run = nil
	}

	for _, w := range words {
		token := normalizeWord(w)
		if token == "" || isStopword(token) {
			flush()
			continue
		}
		run = append(run, token)
		// Punctuation inside the original word ends the phrase.
		if strings.IndexFunc(w, func(r rune) bool { return r == '.' || r == ',' || r == ';' || r == ':' || r == '?' || r == '!' }) >= 0 {
			flush()
		}
	}
	flush()

	if len(phrases) > max {
		phrases = phrases[:max]
	}
	return phrases
}

func isStopword(token string) bool {
	_, ok := phraseStopwords[token]
	return ok
}

// normalizeWord lowercases and strips edge punctuation, keeping internal
// hyphens and underscores.
func normalizeWord(w string) string {
	w = strings.ToLower(w)
	return strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) && r != '-' && r != '_'
	})
}
