package analyzer

import (
	"reflect"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func TestClassifySection(t *testing.T) {
	a := New()
	tests := []struct {
		name      string
		text      string
		wantType  models.SectionType
		wantLevel int
	}{
		{"markdown h1", "# Title\nbody text", models.SectionHeading, 1},
		{"markdown h3", "### Deep heading", models.SectionHeading, 3},
		{"numbered heading", "1.2 Installation steps", models.SectionHeading, 1},
		{"title with colon", "Overview:", models.SectionHeading, 1},
		{"bullet list", "- first item\n- second item", models.SectionList, 0},
		{"numbered list", "1. first\n2. second", models.SectionList, 0},
		{"fenced code", "```\nfunc main() {}\n```", models.SectionCode, 0},
		{"short question", "What is hybrid retrieval?", models.SectionQuestion, 0},
		{"quote", "> as noted earlier", models.SectionQuote, 0},
		{"table", "| a | b |\n| - | - |\n| 1 | 2 |", models.SectionTable, 0},
		{"paragraph", "Plain prose with several words in it.", models.SectionParagraph, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotLevel := a.ClassifySection(tt.text)
			if gotType != tt.wantType || gotLevel != tt.wantLevel {
				t.Errorf("ClassifySection(%q) = %s/%d, want %s/%d",
					tt.text, gotType, gotLevel, tt.wantType, tt.wantLevel)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First one. Second one! Is this the third?")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "First one." {
		t.Errorf("got %q", got[0])
	}

	got = SplitSentences("Terminated. trailing fragment")
	if len(got) != 2 {
		t.Errorf("expected trailing fragment kept, got %v", got)
	}

	if got := SplitSentences("   "); len(got) != 0 {
		t.Errorf("whitespace should yield no sentences, got %v", got)
	}
}

func TestKeyPhrases(t *testing.T) {
	got := KeyPhrases("the retrieval pipeline is a hybrid search engine", 5)
	want := []string{"retrieval pipeline", "hybrid search engine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeyPhrases = %v, want %v", got, want)
	}

	// Runs longer than four words are capped.
	got = KeyPhrases("dense vector index build time measurement report", 5)
	if len(got) != 1 || got[0] != "dense vector index build" {
		t.Errorf("expected capped run, got %v", got)
	}

	// Single content words never form a phrase.
	if got := KeyPhrases("the system", 5); len(got) != 0 {
		t.Errorf("expected no phrases, got %v", got)
	}
}

func TestComputeQuality(t *testing.T) {
	a := New()

	q := a.ComputeQuality("One complete sentence.")
	if q.Coherence != 1.0 {
		t.Errorf("single sentence coherence = %f, want 1.0", q.Coherence)
	}
	if q.Completeness != 1.0 {
		t.Errorf("completeness = %f, want 1.0", q.Completeness)
	}
	if q.Relevance != PlaceholderRelevance {
		t.Errorf("relevance = %f, want %f", q.Relevance, PlaceholderRelevance)
	}

	q = a.ComputeQuality("First. Second. Third unterminated")
	if q.Coherence != 0.3 {
		t.Errorf("coherence = %f, want 0.3", q.Coherence)
	}
	want := 2.0 / 3.0
	if q.Completeness < want-1e-9 || q.Completeness > want+1e-9 {
		t.Errorf("completeness = %f, want %f", q.Completeness, want)
	}
}

func TestAnalyzeContent(t *testing.T) {
	a := New()
	stats := a.AnalyzeContent("Hybrid retrieval fuses results. Keyword search helps.")
	if stats.WordCount != 7 {
		t.Errorf("word count = %d, want 7", stats.WordCount)
	}
	if stats.SentenceCount != 2 {
		t.Errorf("sentence count = %d, want 2", stats.SentenceCount)
	}
	if stats.CharCount == 0 {
		t.Error("char count should be positive")
	}
}

func TestDetectLanguage(t *testing.T) {
	a := New()
	text := "The quick brown fox jumps over the lazy dog while the farmer watches from the old wooden fence near the river."
	if got := a.DetectLanguage(text); got != "en" {
		t.Errorf("DetectLanguage = %q, want en", got)
	}
	if got := a.DetectLanguage("   "); got != "unknown" {
		t.Errorf("empty text = %q, want unknown", got)
	}
}
