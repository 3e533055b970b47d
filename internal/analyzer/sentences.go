package analyzer

import (
	"regexp"
	"strings"
)

// sentenceRe matches a run of text up to and including terminal punctuation
// (with trailing closing quotes/brackets), or a trailing unterminated run.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+["')\]]*|[^.!?]+$`)

// SplitSentences splits text into sentences on terminal punctuation.
// Whitespace-only segments are dropped. The splitter is deterministic and
// has no model dependency, which keeps chunk spans reproducible.
func SplitSentences(text string) []string {
	matches := sentenceRe.FindAllString(text, -1)
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		if s := strings.TrimSpace(m); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
