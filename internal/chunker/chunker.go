// Package chunker turns a document's full text into an ordered sequence of
// sized, annotated chunks.
package chunker

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/analyzer"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/models"
)

// ChunkingError reports that a document's text could not be chunked.
type ChunkingError struct {
	DocumentID string
	Reason     string
}

func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunking document %s: %s", e.DocumentID, e.Reason)
}

// Chunker splits text into overlapping, structure-aware chunks.
// Chunking of one document is sequential (each break point depends on the
// previous one); separate documents may be chunked concurrently since the
// Chunker holds no per-document state.
type Chunker struct {
	analyzer *analyzer.Analyzer
	cfg      config.ChunkingConfig
}

// New creates a Chunker with the given analyzer and sizing configuration.
func New(a *analyzer.Analyzer, cfg config.ChunkingConfig) *Chunker {
	return &Chunker{analyzer: a, cfg: cfg}
}

// Chunk splits fullText into annotated chunks in strictly increasing
// chunk-number order. Emitted spans cover the whole input; consecutive
// chunks overlap by exactly the configured overlap except at the final
// chunk. Returns a ChunkingError for empty input or invalid sizing.
func (c *Chunker) Chunk(documentID, fullText string) ([]*models.Chunk, error) {
	if strings.TrimSpace(fullText) == "" {
		return nil, &ChunkingError{DocumentID: documentID, Reason: "document text is empty"}
	}
	if c.cfg.Overlap >= c.cfg.MinSize || c.cfg.MinSize >= c.cfg.MaxSize {
		return nil, &ChunkingError{
			DocumentID: documentID,
			Reason: fmt.Sprintf("invalid sizing: require overlap < min_size < max_size, got %d/%d/%d",
				c.cfg.Overlap, c.cfg.MinSize, c.cfg.MaxSize),
		}
	}

	var chunks []*models.Chunk
	cursor := 0
	chunkNumber := 0

	for cursor < len(fullText) {
		sectionType, _ := c.analyzer.ClassifySection(fullText[cursor:])
		target := c.cfg.MaxSize
		if sectionType == models.SectionHeading {
			target = c.cfg.MinSize
		}

		breakPoint := c.findBreakPoint(fullText, cursor+target, cursor)
		if breakPoint <= cursor {
			breakPoint = cursor + c.cfg.MaxSize
		}
		if breakPoint > len(fullText) {
			breakPoint = len(fullText)
		}

		content := fullText[cursor:breakPoint]
		secType, secLevel := c.analyzer.ClassifySection(content)
		chunk := &models.Chunk{
			ID:           fmt.Sprintf("%s_%d", documentID, chunkNumber),
			DocumentID:   documentID,
			ChunkNumber:  chunkNumber,
			Content:      content,
			StartChar:    cursor,
			EndChar:      breakPoint,
			SectionType:  secType,
			SectionLevel: secLevel,
			Stats:        c.analyzer.AnalyzeContent(content),
			Quality:      c.analyzer.ComputeQuality(content),
		}
		chunks = append(chunks, chunk)
		chunkNumber++

		if breakPoint >= len(fullText) {
			break
		}
		next := breakPoint - c.cfg.Overlap
		if next <= cursor {
			// Overlap would regress past the previous cursor; advance without it.
			next = breakPoint
		}
		cursor = next
	}

	return chunks, nil
}

// findBreakPoint picks a break position near target, in priority order:
// nearest paragraph break within the paragraph window, sentence boundary
// accumulation within the same window, nearest word boundary within the
// word window, then -1 (caller falls back to a hard cut at max size).
func (c *Chunker) findBreakPoint(text string, target, floor int) int {
	if target >= len(text) {
		return len(text)
	}

	if bp := nearestParagraphBreak(text, target, c.cfg.ParagraphWindow); bp > floor {
		return bp
	}
	if bp := sentenceBoundaryBreak(text, target, c.cfg.ParagraphWindow, c.cfg.SentenceRunMin); bp > floor {
		return bp
	}
	if bp := nearestWordBoundary(text, target, c.cfg.WordWindow); bp > floor {
		return bp
	}
	return -1
}

// nearestParagraphBreak returns the paragraph break ("\n\n") closest to
// target within ±window, or -1 if none exists there.
func nearestParagraphBreak(text string, target, window int) int {
	lo := target - window
	if lo < 0 {
		lo = 0
	}
	hi := target + window
	if hi > len(text) {
		hi = len(text)
	}
	best := -1
	for i := lo; i+1 < hi; i++ {
		if text[i] == '\n' && text[i+1] == '\n' {
			if best == -1 || abs(i-target) < abs(best-target) {
				best = i
			}
		}
	}
	return best
}

// sentenceBoundaryBreak accumulates sentences from the start of the window
// until at least runMin characters are covered, and breaks there.
func sentenceBoundaryBreak(text string, target, window, runMin int) int {
	lo := target - window
	if lo < 0 {
		lo = 0
	}
	hi := target + window
	if hi > len(text) {
		hi = len(text)
	}
	segment := text[lo:hi]
	accumulated := 0
	for _, s := range analyzer.SplitSentences(segment) {
		idx := strings.Index(segment[accumulated:], s)
		if idx < 0 {
			break
		}
		accumulated += idx + len(s)
		if accumulated >= runMin {
			return lo + accumulated
		}
	}
	return -1
}

// nearestWordBoundary returns the whitespace position closest to target
// within ±window, or -1.
func nearestWordBoundary(text string, target, window int) int {
	lo := target - window
	if lo < 0 {
		lo = 0
	}
	hi := target + window
	if hi > len(text) {
		hi = len(text)
	}
	best := -1
	for i := lo; i < hi; i++ {
		if text[i] == ' ' || text[i] == '\n' || text[i] == '\t' {
			if best == -1 || abs(i-target) < abs(best-target) {
				best = i
			}
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Outline derives a document's structural outline from its chunks: one
// entry per heading chunk, in reading order.
func Outline(chunks []*models.Chunk) []models.OutlineSection {
	var outline []models.OutlineSection
	for _, ch := range chunks {
		if ch.SectionType != models.SectionHeading {
			continue
		}
		title := strings.TrimSpace(ch.Content)
		if idx := strings.IndexByte(title, '\n'); idx >= 0 {
			title = strings.TrimSpace(title[:idx])
		}
		title = strings.TrimLeft(title, "# ")
		outline = append(outline, models.OutlineSection{
			Title:     title,
			Level:     ch.SectionLevel,
			StartChar: ch.StartChar,
			EndChar:   ch.EndChar,
		})
	}
	return outline
}
