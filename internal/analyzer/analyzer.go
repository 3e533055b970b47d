// Package analyzer provides structural and content classification of text spans.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/hyperjump/kotae/internal/models"
)

// PlaceholderRelevance is the fixed relevance score assigned to every chunk.
// A contextual relevance scorer is a pending follow-up; until it exists this
// constant is returned as-is.
const PlaceholderRelevance = 0.8

var (
	markdownHeadingRe = regexp.MustCompile(`^(#{1,6})\s+\S`)
	numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\s+\S`)
	titleHeadingRe    = regexp.MustCompile(`^[A-Z][A-Za-z\s]+:$`)
	listItemRe        = regexp.MustCompile(`^\s*([-*]|\d+\.)\s`)
	fencedCodeRe      = regexp.MustCompile("(?s)^\\s*```.*```")
	quoteRe           = regexp.MustCompile(`^\s*>`)
	tableSeparatorRe  = regexp.MustCompile(`\|\s*-+\s*\|`)
)

// Analyzer classifies text spans and computes content statistics.
type Analyzer struct{}

// New returns a new Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// ClassifySection identifies the structural type of a text span and, for
// headings, the heading level. Rules are evaluated in a fixed order and the
// first match wins.
func (a *Analyzer) ClassifySection(text string) (models.SectionType, int) {
	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}
	trimmed := strings.TrimSpace(firstLine)

	if m := markdownHeadingRe.FindStringSubmatch(trimmed); m != nil {
		return models.SectionHeading, len(m[1])
	}
	if numberedHeadingRe.MatchString(trimmed) || titleHeadingRe.MatchString(trimmed) {
		return models.SectionHeading, 1
	}
	if listItemRe.MatchString(firstLine) {
		return models.SectionList, 0
	}
	if fencedCodeRe.MatchString(text) {
		return models.SectionCode, 0
	}
	if whole := strings.TrimSpace(text); len(whole) < 100 && strings.HasSuffix(whole, "?") {
		return models.SectionQuestion, 0
	}
	if quoteRe.MatchString(firstLine) {
		return models.SectionQuote, 0
	}
	if tableSeparatorRe.MatchString(text) {
		return models.SectionTable, 0
	}
	return models.SectionParagraph, 0
}

// AnalyzeContent computes word, character, and sentence counts plus up to
// five multi-word key phrase candidates.
func (a *Analyzer) AnalyzeContent(text string) models.ContentStats {
	return models.ContentStats{
		WordCount:     len(strings.Fields(text)),
		CharCount:     len(text),
		SentenceCount: len(SplitSentences(text)),
		KeyPhrases:    KeyPhrases(text, 5),
	}
}

// ComputeQuality scores a chunk's coherence and completeness.
// Coherence is 1.0 for a single sentence, otherwise sentenceCount/10 capped
// at 1.0. Completeness is the fraction of sentences ending in terminal
// punctuation. Relevance is the placeholder constant.
func (a *Analyzer) ComputeQuality(text string) models.QualityScores {
	sentences := SplitSentences(text)

	coherence := 1.0
	if len(sentences) > 1 {
		coherence = float64(len(sentences)) / 10
		if coherence > 1.0 {
			coherence = 1.0
		}
	}

	completeness := 0.0
	if len(sentences) > 0 {
		complete := 0
		for _, s := range sentences {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			switch s[len(s)-1] {
			case '.', '!', '?':
				complete++
			}
		}
		completeness = float64(complete) / float64(len(sentences))
	}

	return models.QualityScores{
		Coherence:    coherence,
		Completeness: completeness,
		Relevance:    PlaceholderRelevance,
	}
}

// DetectLanguage returns an ISO language code for the text, or "unknown"
// when detection is unreliable or fails. Never returns an error.
func (a *Analyzer) DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "unknown"
	}
	info := whatlanggo.Detect(text)
	if info.Lang == -1 || !info.IsReliable() {
		return "unknown"
	}
	return info.Lang.Iso6391()
}
