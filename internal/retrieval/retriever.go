// Package retrieval runs hybrid semantic+keyword retrieval with weighted
// reciprocal rank fusion and optional re-ranking.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/rerank"
	"github.com/hyperjump/kotae/internal/vector"
)

// candidateFactor oversamples each source list before fusion so that chunks
// ranked well by only one source still reach the fused top-k.
const candidateFactor = 3

// ChunkStore resolves chunk IDs to stored chunks.
type ChunkStore interface {
	GetChunks(ctx context.Context, ids []string) ([]*models.Chunk, error)
}

// RetrievalError wraps a failure in one retrieval stage.
type RetrievalError struct {
	Stage string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Stage, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// HybridRetriever fans out to the vector and keyword indices, fuses the
// ranked lists and optionally re-scores the fused top-k.
type HybridRetriever struct {
	store          ChunkStore
	embedder       embedding.Embedder
	vectorIndex    vector.Index
	keywordIndex   keyword.Index
	scorer         rerank.Scorer
	rrfConstant    int
	keyPhraseBoost float64
	logger         *zap.Logger

	mu      sync.RWMutex
	weights models.SearchWeights
}

// Option configures a HybridRetriever.
type Option func(*HybridRetriever)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *HybridRetriever) {
		r.logger = logger
	}
}

// WithKeyPhraseBoost boosts keyword matches against a chunk's extracted key
// phrases. Values <= 1 leave keyword search on content alone.
func WithKeyPhraseBoost(boost float64) Option {
	return func(r *HybridRetriever) {
		r.keyPhraseBoost = boost
	}
}

// NewHybridRetriever creates a retriever with the given dependencies and
// starting weights. Invalid starting weights are replaced by the defaults.
func NewHybridRetriever(
	store ChunkStore,
	embedder embedding.Embedder,
	vectorIndex vector.Index,
	keywordIndex keyword.Index,
	scorer rerank.Scorer,
	weights models.SearchWeights,
	rrfConstant int,
	opts ...Option,
) *HybridRetriever {
	if weights.Validate() != nil {
		weights = models.DefaultWeights()
	}
	if rrfConstant <= 0 {
		rrfConstant = 60
	}
	r := &HybridRetriever{
		store:        store,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		keywordIndex: keywordIndex,
		scorer:       scorer,
		rrfConstant:  rrfConstant,
		weights:      weights,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Weights returns the current weight configuration.
func (r *HybridRetriever) Weights() models.SearchWeights {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.weights
}

// SetWeights atomically replaces the weight configuration. Invalid weights
// are rejected and the previous configuration stays in effect.
func (r *HybridRetriever) SetWeights(w models.SearchWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.weights = w
	r.mu.Unlock()
	r.logger.Info("search weights updated",
		zap.Float64("semantic", w.Semantic),
		zap.Float64("keyword", w.Keyword),
		zap.Float64("rerank", w.Rerank))
	return nil
}

// WeightsForIntent returns the weights to use for a request. An explicit
// override wins; otherwise technical and analytical queries lean semantic,
// factual queries lean keyword, and everything else uses the configured
// weights.
func (r *HybridRetriever) WeightsForIntent(intent models.QueryIntent, override *models.SearchWeights) models.SearchWeights {
	if override != nil {
		return *override
	}
	switch intent {
	case models.IntentTechnical, models.IntentAnalytical:
		return models.SearchWeights{Semantic: 0.6, Keyword: 0.2, Rerank: 0.2}
	case models.IntentFactual:
		return models.SearchWeights{Semantic: 0.3, Keyword: 0.5, Rerank: 0.2}
	default:
		return r.Weights()
	}
}

// Retrieve runs hybrid retrieval for a single query string and returns the
// fused, optionally re-ranked top-k results.
func (r *HybridRetriever) Retrieve(ctx context.Context, query string, weights models.SearchWeights, topK int) ([]*models.RankedResult, error) {
	if topK <= 0 {
		topK = 5
	}
	candidates := topK * candidateFactor

	var (
		semanticIDs []string
		keywordIDs  []string
		errChan     = make(chan error, 2)
		wg          sync.WaitGroup
	)

	if weights.Semantic > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queryEmbedding, err := r.embedder.Embed(ctx, query)
			if err != nil {
				errChan <- &RetrievalError{Stage: "embedding", Err: err}
				return
			}
			results, err := r.vectorIndex.Search(ctx, queryEmbedding, candidates)
			if err != nil {
				errChan <- &RetrievalError{Stage: "semantic search", Err: err}
				return
			}
			semanticIDs = make([]string, len(results))
			for i, res := range results {
				semanticIDs[i] = res.ID
			}
		}()
	}

	if weights.Keyword > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := r.keywordIndex.Search(ctx, query, candidates, r.keywordOptions())
			if err != nil {
				errChan <- &RetrievalError{Stage: "keyword search", Err: err}
				return
			}
			keywordIDs = make([]string, len(results))
			for i, res := range results {
				keywordIDs[i] = res.ID
			}
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	hits := fuseRRF(semanticIDs, keywordIDs, weights.Semantic, weights.Keyword, r.rrfConstant)
	normalizeScores(hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	chunks, err := r.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, &RetrievalError{Stage: "chunk lookup", Err: err}
	}
	byID := make(map[string]*models.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	results := make([]*models.RankedResult, 0, len(hits))
	for _, h := range hits {
		chunk, ok := byID[h.ID]
		if !ok {
			// Index and metadata store can briefly disagree during re-ingestion.
			r.logger.Debug("fused chunk missing from store", zap.String("chunk_id", h.ID))
			continue
		}
		results = append(results, &models.RankedResult{
			ChunkID:      chunk.ID,
			DocumentID:   chunk.DocumentID,
			Content:      chunk.Content,
			Score:        h.Score,
			SectionType:  chunk.SectionType,
			SectionLevel: chunk.SectionLevel,
			Quality:      chunk.Quality,
		})
	}

	if weights.Rerank > 0 && r.scorer != nil && len(results) > 0 {
		if err := r.applyRerank(ctx, query, weights.Rerank, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *HybridRetriever) keywordOptions() *keyword.SearchOptions {
	if r.keyPhraseBoost <= 1 {
		return nil
	}
	return &keyword.SearchOptions{KeyPhraseBoost: r.keyPhraseBoost}
}

// applyRerank blends the normalized fused score with the re-rank score and
// re-sorts.
func (r *HybridRetriever) applyRerank(ctx context.Context, query string, rerankWeight float64, results []*models.RankedResult) error {
	texts := make([]string, len(results))
	for i, res := range results {
		texts[i] = res.Content
	}
	scores, err := r.scorer.Score(ctx, query, texts)
	if err != nil {
		return &RetrievalError{Stage: "rerank", Err: err}
	}
	if len(scores) != len(results) {
		return &RetrievalError{Stage: "rerank", Err: fmt.Errorf("score count mismatch: got %d, want %d", len(scores), len(results))}
	}
	for i, res := range results {
		res.Score = (1-rerankWeight)*res.Score + rerankWeight*scores[i]
	}
	sortResults(results)
	return nil
}

// RetrieveEnhanced retrieves for an analyzed query. Decomposed queries are
// retrieved per sub-query and merged with case-insensitive content
// deduplication; otherwise the expanded query is used directly.
func (r *HybridRetriever) RetrieveEnhanced(ctx context.Context, eq *models.EnhancedQuery, weights models.SearchWeights, topK int) ([]*models.RankedResult, error) {
	query := eq.Expanded
	if query == "" {
		query = eq.Original
	}
	if len(eq.SubQueries) < 2 {
		return r.Retrieve(ctx, query, weights, topK)
	}

	if topK <= 0 {
		topK = 5
	}
	seen := make(map[string]bool)
	var merged []*models.RankedResult
	for _, sub := range eq.SubQueries {
		subResults, err := r.Retrieve(ctx, sub, weights, topK)
		if err != nil {
			return nil, err
		}
		for _, res := range subResults {
			key := strings.ToLower(res.Content)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, res)
		}
	}
	sortResults(merged)
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged, nil
}

// sortResults orders by score descending with chunk ID as tie-breaker.
func sortResults(results []*models.RankedResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
}
