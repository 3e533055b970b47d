package respond

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// styleInstructions maps each style to its generation instruction. Unknown
// styles fall back to detailed.
var styleInstructions = map[models.ResponseStyle]string{
	models.StyleConcise:   "Provide a brief, direct answer to the question using the given context. Focus on key points only.",
	models.StyleDetailed:  "Provide a comprehensive answer with explanations using the given context. Include relevant details and examples if available.",
	models.StyleTechnical: "Provide a technical answer with proper terminology and references. Include specific technical details and cite sources.",
	models.StyleSimple:    "Provide a simple, easy-to-understand answer avoiding technical terms. Explain concepts in plain language.",
}

var answerLabels = map[models.ResponseStyle]string{
	models.StyleConcise:   "Answer",
	models.StyleDetailed:  "Detailed Answer",
	models.StyleTechnical: "Technical Answer",
	models.StyleSimple:    "Simple Answer",
}

// SystemPrompt returns the instruction for the given style.
func SystemPrompt(style models.ResponseStyle) string {
	if instr, ok := styleInstructions[style]; ok {
		return instr
	}
	return styleInstructions[models.StyleDetailed]
}

// BuildPrompt assembles the user prompt: each selected chunk under its
// section tag, the technical style additionally citing document IDs, then
// the question.
func BuildPrompt(style models.ResponseStyle, query string, chunks []*models.RankedResult) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for _, chunk := range chunks {
		fmt.Fprintf(&b, "[%s] %s\n", sectionLabel(chunk), chunk.Content)
		if style == models.StyleTechnical {
			fmt.Fprintf(&b, "Source: %s, Section: %s\n", chunk.DocumentID, sectionLabel(chunk))
		}
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", query)
	label, ok := answerLabels[style]
	if !ok {
		label = answerLabels[models.StyleDetailed]
	}
	fmt.Fprintf(&b, "\n%s: ", label)
	return b.String()
}

func sectionLabel(chunk *models.RankedResult) string {
	if chunk.SectionType == "" {
		return string(models.SectionParagraph)
	}
	return string(chunk.SectionType)
}
