package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_DocumentLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{
		ID:            "doc1",
		Filename:      "guide.md",
		MimeType:      "text/markdown",
		Status:        models.StatusPending,
		Outline:       []models.OutlineSection{{Title: "Intro", Level: 1, StartChar: 0, EndChar: 40}},
		SourcePath:    "/docs/guide.md",
		SourceModTime: 1700000000123456789,
		SourceSize:    2048,
	}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetDocument(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "guide.md" || got.Status != models.StatusPending {
		t.Errorf("got %+v", got)
	}
	if len(got.Outline) != 1 || got.Outline[0].Title != "Intro" {
		t.Errorf("outline round-trip failed: %+v", got.Outline)
	}
	if got.SourcePath != "/docs/guide.md" || got.SourceModTime != 1700000000123456789 || got.SourceSize != 2048 {
		t.Errorf("source provenance round-trip failed: %+v", got)
	}

	if err := store.SetDocumentStatus(ctx, "doc1", models.StatusFailed, "embedding backend down"); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetDocument(ctx, "doc1")
	if got.Status != models.StatusFailed || got.Error != "embedding backend down" {
		t.Errorf("failure not recorded: %+v", got)
	}

	got.Status = models.StatusProcessed
	got.Error = ""
	got.Language = "en"
	if err := store.UpdateDocument(ctx, got); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetDocument(ctx, "doc1")
	if got.Status != models.StatusProcessed || got.Language != "en" {
		t.Errorf("update lost fields: %+v", got)
	}

	list, err := store.ListDocuments(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 doc, got %d", len(list))
	}

	if err := store.DeleteDocument(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetDocument(ctx, "doc1"); err == nil {
		t.Error("expected error after delete")
	}
}

func TestSQLiteStorage_UpdateMissingDocument(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.UpdateDocument(ctx, &models.Document{ID: "ghost"})
	if err == nil {
		t.Error("expected error for missing document")
	}
	if err := store.SetDocumentStatus(ctx, "ghost", models.StatusFailed, "x"); err == nil {
		t.Error("expected error for missing document")
	}
}

func makeChunk(docID string, n int, content string) *models.Chunk {
	return &models.Chunk{
		ID:          docID + "_" + string(rune('0'+n)),
		DocumentID:  docID,
		ChunkNumber: n,
		Content:     content,
		StartChar:   n * 10,
		EndChar:     n*10 + len(content),
		SectionType: models.SectionParagraph,
		Stats:       models.ContentStats{WordCount: 3, KeyPhrases: []string{"key phrase"}},
		Quality:     models.QualityScores{Coherence: 1, Completeness: 1, Relevance: 0.8},
		Embedding:   &models.Embedding{Model: "test-model", Dimensions: 8},
	}
}

func TestSQLiteStorage_Chunks(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{ID: "d1", Filename: "f.txt", Status: models.StatusPending}
	if err := store.CreateDocument(ctx, doc); err != nil {
		t.Fatal(err)
	}

	chunks := []*models.Chunk{
		makeChunk("d1", 0, "first span"),
		makeChunk("d1", 1, "second span"),
	}
	if err := store.ReplaceChunks(ctx, "d1", chunks); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetChunk(ctx, chunks[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "first span" || got.SectionType != models.SectionParagraph {
		t.Errorf("got %+v", got)
	}
	if got.Stats.KeyPhrases[0] != "key phrase" {
		t.Errorf("stats round-trip failed: %+v", got.Stats)
	}
	if got.Embedding == nil || got.Embedding.Model != "test-model" || got.Embedding.Dimensions != 8 {
		t.Errorf("embedding metadata lost: %+v", got.Embedding)
	}

	byDoc, err := store.GetChunksByDocumentID(ctx, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if len(byDoc) != 2 || byDoc[0].ChunkNumber != 0 || byDoc[1].ChunkNumber != 1 {
		t.Errorf("chunks not ordered by number: %+v", byDoc)
	}

	subset, err := store.GetChunks(ctx, []string{chunks[1].ID, "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if len(subset) != 1 || subset[0].ID != chunks[1].ID {
		t.Errorf("subset = %+v", subset)
	}
}

func TestSQLiteStorage_ReplaceChunksIdempotent(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doc := &models.Document{ID: "d1", Status: models.StatusPending}
	_ = store.CreateDocument(ctx, doc)

	first := []*models.Chunk{makeChunk("d1", 0, "v1 one"), makeChunk("d1", 1, "v1 two"), makeChunk("d1", 2, "v1 three")}
	if err := store.ReplaceChunks(ctx, "d1", first); err != nil {
		t.Fatal(err)
	}
	second := []*models.Chunk{makeChunk("d1", 0, "v2 one"), makeChunk("d1", 1, "v2 two")}
	if err := store.ReplaceChunks(ctx, "d1", second); err != nil {
		t.Fatal(err)
	}

	count, err := store.CountChunks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("CountChunks = %d, want 2 after replacement", count)
	}
	got, _ := store.GetChunksByDocumentID(ctx, "d1")
	if got[0].Content != "v2 one" {
		t.Errorf("stale content survived: %q", got[0].Content)
	}
}

func TestSQLiteStorage_Counts(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	docs, _ := store.CountDocuments(ctx)
	if docs != 0 {
		t.Errorf("empty db documents = %d", docs)
	}
	_ = store.CreateDocument(ctx, &models.Document{ID: "d1", Status: models.StatusPending})
	_ = store.CreateDocument(ctx, &models.Document{ID: "d2", Status: models.StatusPending})
	docs, _ = store.CountDocuments(ctx)
	if docs != 2 {
		t.Errorf("documents = %d, want 2", docs)
	}

	if err := store.DeleteChunksByDocumentID(ctx, "d1"); err != nil {
		t.Fatal(err)
	}
}
