// Package integration provides end-to-end tests (requires real storage and indices).
package integration

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/analyzer"
	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/pipeline"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/rerank"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/window"
)

func newPipeline(t *testing.T, dir string) *pipeline.Pipeline {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "db.sqlite"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
		},
		Chunking: config.ChunkingConfig{
			MinSize: 60, MaxSize: 400, Overlap: 20,
			ParagraphWindow: 60, SentenceRunMin: 60, WordWindow: 30,
		},
		Embedding: config.EmbeddingConfig{Dimensions: 16},
		Context:   config.ContextConfig{TokenBudget: 2000, OverlapThreshold: 0.7},
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	embedder := embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	t.Cleanup(func() { _ = embedder.Close() })

	vecIndex, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatal(err)
	}
	kwIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kwIndex.Close() })

	retriever := retrieval.NewHybridRetriever(store, embedder, vecIndex, kwIndex,
		rerank.NewLexicalScorer(), models.DefaultWeights(), 60)
	docAnalyzer := analyzer.New()

	return pipeline.New(store, embedder, vecIndex, kwIndex, retriever,
		chunker.New(docAnalyzer, cfg.Chunking), docAnalyzer,
		query.NewAnalyzer(cfg.Query),
		window.NewOptimizer(cfg.Context.TokenBudget, cfg.Context.OverlapThreshold),
		&llm.MockGenerator{},
	)
}

func TestIntegration_IngestAndQuery(t *testing.T) {
	p := newPipeline(t, t.TempDir())
	ctx := context.Background()

	docs := []*models.DocumentInput{
		{ID: "doc1", Filename: "fusion.md", Content: "Weighted reciprocal rank fusion merges ranked lists from the semantic and keyword retrievers. Each list contributes its weight divided by rank plus a damping constant."},
		{ID: "doc2", Filename: "window.md", Content: "The context window optimizer packs retrieved chunks into a fixed word budget. Redundant chunks whose content overlaps earlier picks are dropped."},
	}
	for _, d := range docs {
		if _, err := p.Ingest(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := p.Query(ctx, &models.QueryRequest{Query: "reciprocal rank fusion damping constant", TopK: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Sources) == 0 {
		t.Fatal("expected at least one source")
	}
	if resp.Sources[0].DocumentID != "doc1" {
		t.Errorf("top source = %s, want doc1", resp.Sources[0].DocumentID)
	}
	if resp.Answer == "" {
		t.Error("expected a generated answer")
	}
	if !strings.Contains(resp.FormattedAnswer, "### Sources") {
		t.Error("formatted answer missing source section")
	}

	status, err := p.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status.Documents != 2 {
		t.Errorf("documents = %d, want 2", status.Documents)
	}
	if status.Chunks == 0 || status.VectorSize == 0 {
		t.Errorf("status = %+v", status)
	}
}

func TestIntegration_ReingestAndDelete(t *testing.T) {
	p := newPipeline(t, t.TempDir())
	ctx := context.Background()

	input := &models.DocumentInput{
		ID: "doc1", Filename: "a.txt",
		Content: "Hybrid retrieval runs the semantic and keyword searches in parallel and fuses their rankings.",
	}
	if _, err := p.Ingest(ctx, input); err != nil {
		t.Fatal(err)
	}
	before, _ := p.Status(ctx)

	if _, err := p.Ingest(ctx, input); err != nil {
		t.Fatal(err)
	}
	after, _ := p.Status(ctx)
	if after.Chunks != before.Chunks || after.VectorSize != before.VectorSize {
		t.Errorf("re-ingest changed counts: %+v -> %+v", before, after)
	}

	if err := p.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	final, _ := p.Status(ctx)
	if final.Documents != 0 || final.Chunks != 0 || final.VectorSize != 0 {
		t.Errorf("delete left residue: %+v", final)
	}

	resp, err := p.Query(ctx, &models.QueryRequest{Query: "hybrid retrieval rankings"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("deleted content still retrievable: %+v", resp.Sources)
	}
}
