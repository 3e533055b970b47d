package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// An existing index is opened and reused so re-ingestion stays incremental.
// If the mapping changes in code, remove the index directory to force a rebuild.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	chunkMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a verbatim
	// phrase from a chunk matches the exact indexed words.
	textFieldMapping.Analyzer = standard.Name
	chunkMapping.AddFieldMappingsAt("content", textFieldMapping)
	chunkMapping.AddFieldMappingsAt("key_phrases", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	chunkMapping.AddFieldMappingsAt("document_id", keywordFieldMapping)
	chunkMapping.AddFieldMappingsAt("section_type", keywordFieldMapping)
	im.AddDocumentMapping("chunk", chunkMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = chunkMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a chunk by ID.
func (b *BleveIndex) Index(ctx context.Context, chunkID string, doc *ChunkDocument) error {
	return b.index.Index(chunkID, doc)
}

// Search runs a match query over chunk content and returns up to limit hits.
// With a KeyPhraseBoost above 1, a boosted key-phrase field query joins the
// disjunction so phrase-bearing chunks rank higher.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")

	var q blevequery.Query = contentQuery
	if opts != nil && opts.KeyPhraseBoost > 1 {
		phraseQuery := bleve.NewMatchQuery(query)
		phraseQuery.SetField("key_phrases")
		phraseQuery.SetBoost(opts.KeyPhraseBoost)
		q = bleve.NewDisjunctionQuery(contentQuery, phraseQuery)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Result, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Result{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Delete removes chunks from the index by ID.
func (b *BleveIndex) Delete(ctx context.Context, chunkIDs []string) error {
	batch := b.index.NewBatch()
	for _, id := range chunkIDs {
		batch.Delete(id)
	}
	return b.index.Batch(batch)
}

// Close closes the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
