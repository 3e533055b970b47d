// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotae/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Query      QueryConfig      `yaml:"query"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Context    ContextConfig    `yaml:"context"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Rerank     RerankConfig     `yaml:"rerank"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the metadata database and indices.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	BleveIndexPath  string `yaml:"bleve_index_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
	// VectorProvider selects the vector index implementation: "memory" or "qdrant".
	VectorProvider string       `yaml:"vector_provider"`
	Qdrant         QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig holds connection settings for the Qdrant vector provider.
type QdrantConfig struct {
	URL        string `yaml:"url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Collection string `yaml:"collection"`
}

// ChunkingConfig holds chunk sizing and break-point search settings.
// Window values are character distances around the target break position.
type ChunkingConfig struct {
	MinSize         int `yaml:"min_size"`
	MaxSize         int `yaml:"max_size"`
	Overlap         int `yaml:"overlap"`
	ParagraphWindow int `yaml:"paragraph_window"`
	SentenceRunMin  int `yaml:"sentence_run_min"`
	WordWindow      int `yaml:"word_window"`
}

// QueryConfig holds query-understanding lexicons. Empty values fall back
// to built-in defaults.
type QueryConfig struct {
	TechnicalTerms []string            `yaml:"technical_terms"`
	Synonyms       map[string][]string `yaml:"synonyms"`
}

// RetrievalConfig holds hybrid retrieval settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
	// RRFConstant is the rank-damping constant k in 1/(rank+k).
	RRFConstant int `yaml:"rrf_constant"`
	// KeyPhraseBoost multiplies keyword matches against a chunk's extracted
	// key phrases. Values <= 1 disable the extra field query.
	KeyPhraseBoost float64              `yaml:"key_phrase_boost"`
	Weights        models.SearchWeights `yaml:"weights"`
}

// ContextConfig holds context window optimization settings.
type ContextConfig struct {
	TokenBudget int `yaml:"token_budget"`
	// OverlapThreshold is the word-set overlap fraction above which a
	// candidate chunk is skipped as redundant.
	OverlapThreshold float64 `yaml:"overlap_threshold"`
}

// EmbeddingConfig holds embedding backend settings.
type EmbeddingConfig struct {
	// Provider selects the embedder: "openai" (HTTP) or "onnx" (local, CGO).
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	ModelPath  string `yaml:"model_path"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// GenerationConfig holds text-generation backend settings.
type GenerationConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
}

// RerankConfig holds re-ranking settings.
type RerankConfig struct {
	// Provider selects the scorer: "lexical" (in-process) or "http" (cross-encoder service).
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// WatchConfig holds drop-directory ingestion settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Invalid retrieval weights or chunking sizes are rejected here, at startup,
// rather than surfacing on the first request.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Retrieval.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("config retrieval.weights: %w", err)
	}
	if cfg.Chunking.Overlap >= cfg.Chunking.MinSize || cfg.Chunking.MinSize >= cfg.Chunking.MaxSize {
		return nil, fmt.Errorf("config chunking: require overlap < min_size < max_size, got %d/%d/%d",
			cfg.Chunking.Overlap, cfg.Chunking.MinSize, cfg.Chunking.MaxSize)
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
