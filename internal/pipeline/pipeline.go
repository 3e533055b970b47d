// Package pipeline orchestrates document ingestion and query answering.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/analyzer"
	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/respond"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/window"
)

// noAnswerText is returned when retrieval finds nothing to ground an answer.
const noAnswerText = "No relevant information was found in the indexed documents."

// Pipeline wires the ingestion and query stages together.
type Pipeline struct {
	storage       storage.Storage
	embedder      embedding.Embedder
	vectorIndex   vector.Index
	keywordIndex  keyword.Index
	retriever     *retrieval.HybridRetriever
	chunker       *chunker.Chunker
	docAnalyzer   *analyzer.Analyzer
	queryAnalyzer *query.Analyzer
	optimizer     *window.Optimizer
	generator     llm.Generator
	extractor     *extract.Extractor
	embedModel    string
	logger        *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithExtractor sets the file text extractor used by IngestFile. When nil,
// files are read as plain text.
func WithExtractor(e *extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithEmbeddingModel records the model name attached to stored chunk
// embeddings.
func WithEmbeddingModel(model string) Option {
	return func(p *Pipeline) { p.embedModel = model }
}

// New creates a pipeline with the given dependencies.
func New(
	store storage.Storage,
	embedder embedding.Embedder,
	vectorIndex vector.Index,
	keywordIndex keyword.Index,
	retriever *retrieval.HybridRetriever,
	chk *chunker.Chunker,
	docAnalyzer *analyzer.Analyzer,
	queryAnalyzer *query.Analyzer,
	optimizer *window.Optimizer,
	generator llm.Generator,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		storage:       store,
		embedder:      embedder,
		vectorIndex:   vectorIndex,
		keywordIndex:  keywordIndex,
		retriever:     retriever,
		chunker:       chk,
		docAnalyzer:   docAnalyzer,
		queryAnalyzer: queryAnalyzer,
		optimizer:     optimizer,
		generator:     generator,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest processes a document through the full lifecycle: parsing, chunking,
// embedding and indexing. Re-ingesting an existing ID replaces its chunks
// atomically. On failure the document is left in the failed state with the
// error recorded.
func (p *Pipeline) Ingest(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	doc := &models.Document{
		ID:            input.ID,
		Filename:      input.Filename,
		MimeType:      input.MimeType,
		Status:        models.StatusPending,
		SourcePath:    input.SourcePath,
		SourceModTime: input.SourceModTime,
		SourceSize:    input.SourceSize,
	}
	if doc.MimeType == "" {
		doc.MimeType = extract.MimeType(filepath.Ext(input.Filename))
	}

	if existing, err := p.storage.GetDocument(ctx, doc.ID); err == nil {
		doc.CreatedAt = existing.CreatedAt
		if err := p.storage.UpdateDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to update document: %w", err)
		}
	} else if err := p.storage.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	processed, err := p.process(ctx, doc, input.Content)
	if err != nil {
		p.fail(ctx, doc.ID, err)
		return nil, err
	}
	return processed, nil
}

// process runs the parsing, embedding and indexing stages for a stored
// document record.
func (p *Pipeline) process(ctx context.Context, doc *models.Document, content string) (*models.Document, error) {
	if err := p.storage.SetDocumentStatus(ctx, doc.ID, models.StatusParsing, ""); err != nil {
		return nil, err
	}

	chunks, err := p.chunker.Chunk(doc.ID, content)
	if err != nil {
		return nil, err
	}

	doc.Language = p.docAnalyzer.DetectLanguage(content)
	doc.Outline = chunker.Outline(chunks)
	doc.Status = models.StatusGeneratingEmbeddings
	if err := p.storage.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	for i, chunk := range chunks {
		chunk.Embedding = &models.Embedding{
			Vector:     embeddings[i],
			Model:      p.embedModel,
			Dimensions: p.embedder.Dimensions(),
		}
	}

	// Capture the outgoing chunk IDs before the swap so stale entries can be
	// dropped from both indices.
	oldChunks, err := p.storage.GetChunksByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	oldIDs := make([]string, len(oldChunks))
	for i, chunk := range oldChunks {
		oldIDs[i] = chunk.ID
	}

	if err := p.storage.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return nil, fmt.Errorf("failed to store chunks: %w", err)
	}

	if len(oldIDs) > 0 {
		if err := p.vectorIndex.Remove(ctx, oldIDs); err != nil {
			return nil, fmt.Errorf("failed to remove stale vectors: %w", err)
		}
		if err := p.keywordIndex.Delete(ctx, oldIDs); err != nil {
			return nil, fmt.Errorf("failed to remove stale keywords: %w", err)
		}
	}

	chunkIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
	}
	if err := p.vectorIndex.Add(ctx, chunkIDs, embeddings); err != nil {
		return nil, fmt.Errorf("failed to index vectors: %w", err)
	}
	for _, chunk := range chunks {
		kwDoc := &keyword.ChunkDocument{
			DocumentID:  chunk.DocumentID,
			Content:     chunk.Content,
			KeyPhrases:  strings.Join(chunk.Stats.KeyPhrases, " "),
			SectionType: string(chunk.SectionType),
		}
		if err := p.keywordIndex.Index(ctx, chunk.ID, kwDoc); err != nil {
			return nil, fmt.Errorf("failed to index keywords: %w", err)
		}
	}

	if err := p.storage.SetDocumentStatus(ctx, doc.ID, models.StatusProcessed, ""); err != nil {
		return nil, err
	}
	doc.Status = models.StatusProcessed
	p.logger.Info("document ingested",
		zap.String("doc_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", len(chunks)))
	return doc, nil
}

// fail records the failure on the document; the original error is what the
// caller reports.
func (p *Pipeline) fail(ctx context.Context, docID string, cause error) {
	if err := p.storage.SetDocumentStatus(ctx, docID, models.StatusFailed, cause.Error()); err != nil {
		p.logger.Warn("failed to record document failure",
			zap.String("doc_id", docID), zap.Error(err))
	}
}

// FileDocID returns a stable document ID for an absolute file path, so
// re-ingesting the same file updates the same document.
func FileDocID(absPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(absPath))).String()
}

// IngestFile extracts text from the file at path and ingests it under a
// path-derived document ID.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*models.Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}

	// Incremental sync: a processed document with the same source path,
	// mtime and size has nothing new to ingest.
	docID := FileDocID(absPath)
	if existing, err := p.storage.GetDocument(ctx, docID); err == nil &&
		existing.Status == models.StatusProcessed &&
		existing.SourcePath == absPath &&
		existing.SourceModTime == info.ModTime().UnixNano() &&
		existing.SourceSize == info.Size() {
		p.logger.Debug("file unchanged, skipping", zap.String("path", absPath))
		return existing, nil
	}

	text, err := p.extractContent(absPath)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	return p.Ingest(ctx, &models.DocumentInput{
		ID:            docID,
		Filename:      filepath.Base(absPath),
		MimeType:      extract.MimeType(filepath.Ext(absPath)),
		Content:       text,
		SourcePath:    absPath,
		SourceModTime: info.ModTime().UnixNano(),
		SourceSize:    info.Size(),
	})
}

func (p *Pipeline) extractContent(path string) (string, error) {
	if p.extractor != nil {
		return p.extractor.Extract(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// IngestDirectory walks dir recursively and ingests each regular file whose
// extension is in allowedExts (all files when empty), using up to workers
// concurrent ingestions. Returns the number of files ingested and the first
// error encountered.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string, allowedExts []string, workers int) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}

	var paths []string
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if len(allowedExts) > 0 && !ExtensionAllowed(filepath.Ext(path), allowedExts) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return p.ingestPaths(ctx, paths, workers)
}

// ingestPaths runs IngestFile over paths with a bounded worker pool.
func (p *Pipeline) ingestPaths(ctx context.Context, paths []string, workers int) (int, error) {
	if workers <= 0 {
		workers = 4
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	if len(paths) == 0 {
		return 0, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		count    int
		firstErr error
		jobs     = make(chan string)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if _, err := p.IngestFile(ctx, path); err != nil {
					p.logger.Warn("failed to ingest file", zap.String("path", path), zap.Error(err))
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
	return count, firstErr
}

// DeleteDocument removes a document from all indices and storage.
func (p *Pipeline) DeleteDocument(ctx context.Context, id string) error {
	chunks, err := p.storage.GetChunksByDocumentID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}
	chunkIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
	}
	if len(chunkIDs) > 0 {
		if err := p.keywordIndex.Delete(ctx, chunkIDs); err != nil {
			return fmt.Errorf("failed to delete from keyword index: %w", err)
		}
		if err := p.vectorIndex.Remove(ctx, chunkIDs); err != nil {
			return fmt.Errorf("failed to delete from vector index: %w", err)
		}
	}
	if err := p.storage.DeleteChunksByDocumentID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if err := p.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	p.logger.Info("document deleted", zap.String("doc_id", id))
	return nil
}

// Query answers a question against the indexed corpus.
func (p *Pipeline) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	if p.generator == nil {
		return nil, &NotInitializedError{Component: "generator"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			return nil, err
		}
	}
	start := time.Now()

	enhanced := p.queryAnalyzer.Analyze(req.Query)
	weights := p.retriever.WeightsForIntent(enhanced.Context.Intent, req.Weights)

	results, err := p.retriever.RetrieveEnhanced(ctx, enhanced, weights, req.TopK)
	if err != nil {
		return nil, err
	}
	selected := p.optimizer.Optimize(results)
	style := respond.SelectStyle(req.Query, enhanced.Context)

	var answer string
	if len(selected) == 0 {
		answer = noAnswerText
	} else {
		answer, err = p.generator.Generate(ctx,
			respond.SystemPrompt(style),
			respond.BuildPrompt(style, req.Query, selected))
		if err != nil {
			return nil, &GenerationError{Err: err}
		}
	}

	response := &models.QueryResponse{
		FormattedResponse: respond.Format(answer, selected, style),
		Metadata: models.QueryMetadata{
			Original:    enhanced.Original,
			Expanded:    enhanced.Expanded,
			Intent:      enhanced.Context.Intent,
			Complexity:  enhanced.Context.Complexity,
			IsTechnical: enhanced.Context.IsTechnical,
			SubQueries:  enhanced.SubQueries,
			Weights:     weights,
			Style:       style,
		},
		QueryTimeMS: time.Since(start).Milliseconds(),
	}
	p.logger.Debug("query answered",
		zap.String("intent", string(enhanced.Context.Intent)),
		zap.Int("results", len(selected)),
		zap.Int64("query_time_ms", response.QueryTimeMS))
	return response, nil
}

// UpdateWeights replaces the retrieval weights used for subsequent queries.
func (p *Pipeline) UpdateWeights(w models.SearchWeights) error {
	return p.retriever.SetWeights(w)
}

// Weights returns the current retrieval weights.
func (p *Pipeline) Weights() models.SearchWeights {
	return p.retriever.Weights()
}

// GetDocument returns a stored document record.
func (p *Pipeline) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return p.storage.GetDocument(ctx, id)
}

// ListDocuments returns stored document records, newest first.
func (p *Pipeline) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	return p.storage.ListDocuments(ctx, offset, limit)
}

// StatusReport summarizes pipeline state for the status endpoint and CLI.
type StatusReport struct {
	Documents      int64                `json:"documents"`
	Chunks         int64                `json:"chunks"`
	VectorSize     int                  `json:"vector_size"`
	Weights        models.SearchWeights `json:"weights"`
	DiskUsageBytes int64                `json:"disk_usage_bytes"`
}

// Status reports corpus counts, index size, weights and disk usage for the
// given storage paths.
func (p *Pipeline) Status(ctx context.Context, diskPaths ...string) (*StatusReport, error) {
	docs, err := p.storage.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := p.storage.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	usage, err := storage.DiskUsageBytes(diskPaths...)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		Documents:      docs,
		Chunks:         chunks,
		VectorSize:     p.vectorIndex.Size(),
		Weights:        p.retriever.Weights(),
		DiskUsageBytes: usage,
	}, nil
}

// ExtensionAllowed reports whether ext (with or without leading dot) is in
// the allowed list, case-insensitively.
func ExtensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
