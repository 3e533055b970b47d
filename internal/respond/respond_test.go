package respond

import (
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func TestSelectStyle(t *testing.T) {
	tests := []struct {
		query     string
		technical bool
		want      models.ResponseStyle
	}{
		{"briefly summarize the design", false, models.StyleConcise},
		{"give me a quick overview", false, models.StyleConcise},
		{"explain in detail how fusion works", false, models.StyleDetailed},
		{"what are the technical requirements", false, models.StyleTechnical},
		{"explain like I am new to this", false, models.StyleSimple},
		{"how does the cache behave", true, models.StyleTechnical},
		{"how does the cache behave", false, models.StyleDetailed},
	}
	for _, tt := range tests {
		got := SelectStyle(tt.query, models.QueryContext{IsTechnical: tt.technical})
		if got != tt.want {
			t.Errorf("SelectStyle(%q, technical=%v) = %s, want %s", tt.query, tt.technical, got, tt.want)
		}
	}
}

func TestSystemPrompt(t *testing.T) {
	if got := SystemPrompt(models.StyleConcise); !strings.Contains(got, "brief") {
		t.Errorf("concise prompt = %q", got)
	}
	// Unknown styles fall back to detailed.
	if got := SystemPrompt(models.ResponseStyle("bogus")); got != styleInstructions[models.StyleDetailed] {
		t.Errorf("unknown style prompt = %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	chunks := []*models.RankedResult{
		{ChunkID: "c1", DocumentID: "doc1", Content: "Fusion merges ranked lists.", SectionType: models.SectionParagraph},
		{ChunkID: "c2", DocumentID: "doc1", Content: "Weights control the blend."},
	}

	prompt := BuildPrompt(models.StyleDetailed, "how does fusion work", chunks)
	if !strings.HasPrefix(prompt, "Context:\n") {
		t.Errorf("prompt should start with context header: %q", prompt)
	}
	if !strings.Contains(prompt, "[paragraph] Fusion merges ranked lists.") {
		t.Errorf("prompt missing tagged chunk: %q", prompt)
	}
	// A chunk without a section type is tagged as a paragraph.
	if !strings.Contains(prompt, "[paragraph] Weights control the blend.") {
		t.Errorf("prompt missing untyped chunk: %q", prompt)
	}
	if !strings.Contains(prompt, "\nQuestion: how does fusion work\n") {
		t.Errorf("prompt missing question: %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Detailed Answer: ") {
		t.Errorf("prompt should end with the answer label: %q", prompt)
	}
	if strings.Contains(prompt, "Source: doc1") {
		t.Error("non-technical prompt should not cite sources")
	}

	technical := BuildPrompt(models.StyleTechnical, "q", chunks[:1])
	if !strings.Contains(technical, "Source: doc1, Section: paragraph") {
		t.Errorf("technical prompt missing citation: %q", technical)
	}
	if !strings.HasSuffix(technical, "Technical Answer: ") {
		t.Errorf("technical prompt label: %q", technical)
	}
}

func TestFormat(t *testing.T) {
	long := strings.Repeat("x", 300)
	chunks := []*models.RankedResult{
		{ChunkID: "c1", DocumentID: "doc1", Content: long, Score: 0.9, SectionType: models.SectionHeading},
		{ChunkID: "c2", DocumentID: "doc2", Content: "short content", Score: 0.5},
	}

	resp := Format("The answer.", chunks, models.StyleDetailed)
	if resp.Answer != "The answer." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if resp.Style != models.StyleDetailed {
		t.Errorf("style = %s", resp.Style)
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(resp.Sources))
	}
	if !strings.HasSuffix(resp.Sources[0].Content, "...") || len(resp.Sources[0].Content) != 203 {
		t.Errorf("long content should be truncated to a 200-char preview, got %d chars", len(resp.Sources[0].Content))
	}
	if resp.Sources[1].Content != "short content" {
		t.Errorf("short content should be untouched, got %q", resp.Sources[1].Content)
	}
	if resp.Sources[0].ChunkID != "c1" || resp.Sources[0].DocumentID != "doc1" {
		t.Errorf("attribution = %+v", resp.Sources[0])
	}

	if !strings.Contains(resp.FormattedAnswer, "### Sources") {
		t.Error("markdown missing Sources section")
	}
	if !strings.Contains(resp.FormattedAnswer, "1. **heading** (Score: 0.90)") {
		t.Errorf("markdown entry malformed:\n%s", resp.FormattedAnswer)
	}
	if resp.ContextWindow.TotalChunks != 2 {
		t.Errorf("context stats = %+v", resp.ContextWindow)
	}
}
