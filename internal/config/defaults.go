package config

import "github.com/hyperjump/kotae/internal/models"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kotae/data/db/documents.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/kotae/data/indices/bleve"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/kotae/data/indices/vectors.bin"
	}
	if cfg.Storage.VectorProvider == "" {
		cfg.Storage.VectorProvider = "memory"
	}
	if cfg.Storage.Qdrant.Collection == "" {
		cfg.Storage.Qdrant.Collection = "kotae_chunks"
	}
	if cfg.Chunking.MinSize == 0 {
		cfg.Chunking.MinSize = 100
	}
	if cfg.Chunking.MaxSize == 0 {
		cfg.Chunking.MaxSize = 1000
	}
	if cfg.Chunking.Overlap == 0 {
		cfg.Chunking.Overlap = 50
	}
	if cfg.Chunking.ParagraphWindow == 0 {
		cfg.Chunking.ParagraphWindow = 100
	}
	if cfg.Chunking.SentenceRunMin == 0 {
		cfg.Chunking.SentenceRunMin = 100
	}
	if cfg.Chunking.WordWindow == 0 {
		cfg.Chunking.WordWindow = 50
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.RRFConstant == 0 {
		cfg.Retrieval.RRFConstant = 60
	}
	if cfg.Retrieval.KeyPhraseBoost == 0 {
		cfg.Retrieval.KeyPhraseBoost = 2.0
	}
	if cfg.Retrieval.Weights == (models.SearchWeights{}) {
		cfg.Retrieval.Weights = models.DefaultWeights()
	}
	if cfg.Context.TokenBudget == 0 {
		cfg.Context.TokenBudget = 2000
	}
	if cfg.Context.OverlapThreshold == 0 {
		cfg.Context.OverlapThreshold = 0.7
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "openai"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.TimeoutSec == 0 {
		cfg.Embedding.TimeoutSec = 30
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gpt-4o-mini"
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = 1024
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.2
	}
	if cfg.Generation.TimeoutSec == 0 {
		cfg.Generation.TimeoutSec = 60
	}
	if cfg.Rerank.Provider == "" {
		cfg.Rerank.Provider = "lexical"
	}
	if cfg.Rerank.TimeoutSec == 0 {
		cfg.Rerank.TimeoutSec = 15
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
