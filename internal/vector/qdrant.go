package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Qdrant point IDs must be UUIDs or unsigned integers, so chunk IDs are
// mapped to deterministic name-based UUIDs. The original chunk ID travels
// in the payload.
var pointNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func pointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

// QdrantIndex implements Index against a Qdrant server's REST API.
// It assumes cosine distance and creates the collection if missing.
type QdrantIndex struct {
	url        string
	apiKey     string
	collection string
	dimensions int
	client     *http.Client

	mu   sync.RWMutex
	size int
}

// NewQdrantIndex creates the collection (idempotent) and returns the index.
func NewQdrantIndex(settings QdrantSettings, dimensions int) (*QdrantIndex, error) {
	if settings.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	q := &QdrantIndex{
		url:        settings.URL,
		apiKey:     settings.APIKey,
		collection: settings.Collection,
		dimensions: dimensions,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 for an existing collection with the same schema.
	if err := q.putJSON(context.Background(), fmt.Sprintf("%s/collections/%s", q.url, q.collection), body, nil); err != nil {
		return nil, fmt.Errorf("create qdrant collection: %w", err)
	}
	return q, nil
}

// Add upserts vectors with their chunk IDs as payload.
func (q *QdrantIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	points := make([]map[string]any, len(ids))
	for i, id := range ids {
		if len(vectors[i]) != q.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), q.dimensions)
		}
		points[i] = map[string]any{
			"id":      pointID(id),
			"vector":  vectors[i],
			"payload": map[string]any{"chunk_id": id},
		}
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", q.url, q.collection)
	if err := q.putJSON(ctx, url, body, nil); err != nil {
		return err
	}
	q.mu.Lock()
	q.size += len(ids)
	q.mu.Unlock()
	return nil
}

// Search returns the top-k most similar points.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != q.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), q.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", q.url, q.collection)
	if err := q.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunkID, _ := r.Payload["chunk_id"].(string)
		if chunkID == "" {
			continue
		}
		results = append(results, &Result{ID: chunkID, Score: r.Score})
	}
	return results, nil
}

// Remove deletes points by chunk ID.
func (q *QdrantIndex) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	pointIDs := make([]string, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}
	body := map[string]any{"points": pointIDs}
	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", q.url, q.collection)
	if err := q.postJSON(ctx, url, body, nil); err != nil {
		return err
	}
	q.mu.Lock()
	q.size -= len(ids)
	if q.size < 0 {
		q.size = 0
	}
	q.mu.Unlock()
	return nil
}

// Save is a no-op: Qdrant persists server-side.
func (q *QdrantIndex) Save(path string) error { return nil }

// Load is a no-op: Qdrant persists server-side.
func (q *QdrantIndex) Load(path string) error { return nil }

// Size returns the approximate number of vectors added through this handle.
func (q *QdrantIndex) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.size
}

// Close is a no-op; the HTTP client holds no connection state worth closing.
func (q *QdrantIndex) Close() error { return nil }

func (q *QdrantIndex) putJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPut, url, body, out)
}

func (q *QdrantIndex) postJSON(ctx context.Context, url string, body, out any) error {
	return q.doJSON(ctx, http.MethodPost, url, body, out)
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}
	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
