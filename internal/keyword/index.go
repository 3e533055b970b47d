// Package keyword provides the sparse retrieval index over chunks.
package keyword

import "context"

// Result is a single keyword search hit. ID is a chunk ID.
type Result struct {
	ID    string
	Score float64
}

// SearchOptions tunes field weighting for a keyword search.
type SearchOptions struct {
	// KeyPhraseBoost multiplies matches against a chunk's extracted key
	// phrases. Values <= 1 disable the extra field query.
	KeyPhraseBoost float64
}

// Index defines sparse indexing and search over chunk content.
type Index interface {
	Index(ctx context.Context, chunkID string, doc *ChunkDocument) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error)
	Delete(ctx context.Context, chunkIDs []string) error
	Close() error
}

// ChunkDocument is the indexable projection of a chunk.
type ChunkDocument struct {
	DocumentID  string `json:"document_id"`
	Content     string `json:"content"`
	KeyPhrases  string `json:"key_phrases"`
	SectionType string `json:"section_type"`
}
