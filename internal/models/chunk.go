package models

import "time"

// SectionType classifies the structural role of a text span.
type SectionType string

const (
	SectionHeading   SectionType = "heading"
	SectionList      SectionType = "list"
	SectionCode      SectionType = "code"
	SectionQuestion  SectionType = "question"
	SectionQuote     SectionType = "quote"
	SectionTable     SectionType = "table"
	SectionParagraph SectionType = "paragraph"
)

// ContentStats holds basic statistics about a chunk's content.
type ContentStats struct {
	WordCount     int      `json:"word_count"`
	CharCount     int      `json:"char_count"`
	SentenceCount int      `json:"sentence_count"`
	KeyPhrases    []string `json:"key_phrases,omitempty"`
}

// QualityScores holds chunk quality metrics, each in [0,1].
type QualityScores struct {
	Coherence    float64 `json:"coherence"`
	Completeness float64 `json:"completeness"`
	Relevance    float64 `json:"relevance"`
}

// Embedding is a vector attached to a chunk after the embedding step.
type Embedding struct {
	Vector     []float32 `json:"-"`
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
}

// Chunk is a contiguous span of a document's text, the atomic retrieval unit.
// Content is immutable after creation; the embedding is attached once after
// the embedding step and never mutated by query-time components.
type Chunk struct {
	ID           string        `json:"id" db:"id"`
	DocumentID   string        `json:"document_id" db:"document_id"`
	ChunkNumber  int           `json:"chunk_number" db:"chunk_number"`
	Content      string        `json:"content" db:"content"`
	StartChar    int           `json:"start_char" db:"start_char"`
	EndChar      int           `json:"end_char" db:"end_char"`
	SectionType  SectionType   `json:"section_type" db:"section_type"`
	SectionLevel int           `json:"section_level,omitempty" db:"section_level"`
	Stats        ContentStats  `json:"content_stats"`
	Quality      QualityScores `json:"quality"`
	Embedding    *Embedding    `json:"embedding,omitempty"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}
