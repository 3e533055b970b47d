package vector

import "fmt"

// Provider identifies a vector index implementation. The set is closed;
// unknown identifiers fail fast at startup instead of being resolved
// dynamically.
type Provider string

const (
	// ProviderMemory uses in-process brute-force search. Good for small
	// corpora (<10k vectors) and tests.
	ProviderMemory Provider = "memory"
	// ProviderQdrant uses a Qdrant server over its REST API.
	ProviderQdrant Provider = "qdrant"
)

// QdrantSettings configures the qdrant provider.
type QdrantSettings struct {
	URL        string
	APIKey     string
	Collection string
}

// New creates a vector index for the given provider identifier.
func New(provider string, dimensions int, qdrant QdrantSettings) (Index, error) {
	switch Provider(provider) {
	case ProviderMemory, "":
		return NewMemoryIndex(dimensions)
	case ProviderQdrant:
		return NewQdrantIndex(qdrant, dimensions)
	default:
		return nil, fmt.Errorf("unknown vector provider: %q (supported: memory, qdrant)", provider)
	}
}
