package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

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

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "docs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	embedder := embedding.NewMockEmbedder(16)
	vectorIndex, err := vector.NewMemoryIndex(16)
	if err != nil {
		t.Fatal(err)
	}
	keywordIndex, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = keywordIndex.Close() })

	retriever := retrieval.NewHybridRetriever(store, embedder, vectorIndex, keywordIndex,
		rerank.NewLexicalScorer(), models.DefaultWeights(), 60)

	docAnalyzer := analyzer.New()
	chk := chunker.New(docAnalyzer, config.ChunkingConfig{
		MinSize: 60, MaxSize: 400, Overlap: 20,
		ParagraphWindow: 60, SentenceRunMin: 60, WordWindow: 30,
	})

	p := pipeline.New(store, embedder, vectorIndex, keywordIndex, retriever,
		chk, docAnalyzer, query.NewAnalyzer(config.QueryConfig{}),
		window.NewOptimizer(2000, 0.7),
		&llm.MockGenerator{Answer: "canned answer"},
	)

	cfg := &config.Config{}
	cfg.Storage.DatabasePath = filepath.Join(dir, "docs.db")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")

	ts := httptest.NewServer(NewServer(p, cfg, zap.NewNop()).Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatal(err)
	}
}

const handlerDoc = "Weighted reciprocal rank fusion merges ranked lists from two retrieval sources. Each source contributes its weight divided by rank plus a damping constant."

func TestIngestAndQueryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/ingest", models.DocumentInput{
		ID: "doc1", Filename: "fusion.txt", Content: handlerDoc,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("ingest status = %d", resp.StatusCode)
	}
	var doc models.Document
	decode(t, resp, &doc)
	if doc.Status != models.StatusProcessed {
		t.Errorf("document status = %s", doc.Status)
	}

	resp = postJSON(t, ts.URL+"/api/v1/query", models.QueryRequest{
		Query: "How does weighted reciprocal rank fusion merge ranked lists?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("query status = %d", resp.StatusCode)
	}
	var qr models.QueryResponse
	decode(t, resp, &qr)
	if qr.Answer != "canned answer" {
		t.Errorf("answer = %q", qr.Answer)
	}
	if len(qr.Sources) == 0 {
		t.Error("expected sources in response")
	}
	if qr.Metadata.Intent == "" {
		t.Error("metadata should carry the detected intent")
	}
}

func TestQueryEndpointRejectsEmptyQuery(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/query", models.QueryRequest{Query: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	if body["error"] == "" {
		t.Error("error body missing")
	}
}

func TestIngestEndpointRejectsEmptyContent(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/ingest", models.DocumentInput{ID: "bad", Filename: "x.txt", Content: ""})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestWeightsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/weights")
	if err != nil {
		t.Fatal(err)
	}
	var weights models.SearchWeights
	decode(t, resp, &weights)
	if weights != models.DefaultWeights() {
		t.Errorf("initial weights = %+v", weights)
	}

	next := models.SearchWeights{Semantic: 0.5, Keyword: 0.3, Rerank: 0.2}
	data, _ := json.Marshal(next)
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/v1/weights", bytes.NewReader(data))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	decode(t, resp, &weights)
	if weights != next {
		t.Errorf("updated weights = %+v", weights)
	}

	bad, _ := json.Marshal(models.SearchWeights{Semantic: 2, Keyword: 2, Rerank: 2})
	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/v1/weights", bytes.NewReader(bad))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid weights status = %d, want 400", resp.StatusCode)
	}
}

func TestDocumentEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/ingest", models.DocumentInput{
		ID: "doc1", Filename: "fusion.txt", Content: handlerDoc,
	})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/documents")
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Documents []*models.Document `json:"documents"`
	}
	decode(t, resp, &list)
	if len(list.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(list.Documents))
	}

	resp, err = http.Get(ts.URL + "/api/v1/documents/doc1")
	if err != nil {
		t.Fatal(err)
	}
	var doc models.Document
	decode(t, resp, &doc)
	if doc.ID != "doc1" {
		t.Errorf("doc = %+v", doc)
	}

	resp, err = http.Get(ts.URL + "/api/v1/documents/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing doc status = %d, want 404", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/documents/doc1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	resp, _ = http.Get(ts.URL + "/api/v1/documents/doc1")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted doc still found: %d", resp.StatusCode)
	}
}

func TestStatusAndHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/ingest", models.DocumentInput{
		ID: "doc1", Filename: "fusion.txt", Content: handlerDoc,
	})
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	var report pipeline.StatusReport
	decode(t, resp, &report)
	if report.Documents != 1 {
		t.Errorf("documents = %d", report.Documents)
	}
	if report.Chunks == 0 || report.VectorSize == 0 {
		t.Errorf("report = %+v", report)
	}
	if report.DiskUsageBytes == 0 {
		t.Error("disk usage should be non-zero with a populated database")
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	var health map[string]string
	decode(t, resp, &health)
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
}
