package respond

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/window"
	"github.com/hyperjump/kotae/pkg/utils"
)

// sourcePreviewLen bounds the content excerpt attached to each attribution.
const sourcePreviewLen = 200

// Format packages a generated answer with source attributions, a Markdown
// rendering and context-window statistics.
func Format(answer string, chunks []*models.RankedResult, style models.ResponseStyle) *models.FormattedResponse {
	sources := buildSources(chunks)
	return &models.FormattedResponse{
		Answer:          answer,
		FormattedAnswer: renderMarkdown(answer, sources),
		Sources:         sources,
		Style:           style,
		ContextWindow:   window.Stats(chunks),
	}
}

// buildSources creates one attribution per chunk, in rank order, with a
// truncated content preview.
func buildSources(chunks []*models.RankedResult) []models.SourceAttribution {
	sources := make([]models.SourceAttribution, len(chunks))
	for i, chunk := range chunks {
		sources[i] = models.SourceAttribution{
			Content:    utils.Truncate(chunk.Content, sourcePreviewLen),
			Score:      chunk.Score,
			DocumentID: chunk.DocumentID,
			ChunkID:    chunk.ChunkID,
			Section:    string(chunk.SectionType),
		}
	}
	return sources
}

// renderMarkdown appends a numbered Sources section with scores and
// blockquoted previews to the answer.
func renderMarkdown(answer string, sources []models.SourceAttribution) string {
	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n\n### Sources\n")
	for i, source := range sources {
		section := source.Section
		if section == "" {
			section = "Section"
		}
		fmt.Fprintf(&b, "\n%d. **%s** (Score: %.2f)\n", i+1, section, source.Score)
		fmt.Fprintf(&b, "   > %s\n", source.Content)
	}
	return b.String()
}
