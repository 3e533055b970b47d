package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9999\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host default = %q", cfg.Server.Host)
	}
	if cfg.Retrieval.Weights != models.DefaultWeights() {
		t.Errorf("weights default = %+v", cfg.Retrieval.Weights)
	}
	if cfg.Retrieval.RRFConstant != 60 {
		t.Errorf("rrf constant default = %d", cfg.Retrieval.RRFConstant)
	}
	if cfg.Retrieval.KeyPhraseBoost != 2.0 {
		t.Errorf("key phrase boost default = %f", cfg.Retrieval.KeyPhraseBoost)
	}
	if cfg.Context.TokenBudget != 2000 || cfg.Context.OverlapThreshold != 0.7 {
		t.Errorf("context defaults = %+v", cfg.Context)
	}
	if cfg.Chunking.MinSize != 100 || cfg.Chunking.MaxSize != 1000 || cfg.Chunking.Overlap != 50 {
		t.Errorf("chunking defaults = %+v", cfg.Chunking)
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("embedding defaults = %+v", cfg.Embedding)
	}
	if cfg.Rerank.Provider != "lexical" {
		t.Errorf("rerank default = %q", cfg.Rerank.Provider)
	}
	if cfg.Storage.VectorProvider != "memory" {
		t.Errorf("vector provider default = %q", cfg.Storage.VectorProvider)
	}
}

func TestLoadRejectsInvalidWeights(t *testing.T) {
	path := writeConfig(t, "retrieval:\n  weights:\n    semantic: 0.9\n    keyword: 0.9\n    rerank: 0.9\n")
	if _, err := Load(path); err == nil {
		t.Error("invalid weights should be rejected at load time")
	}
}

func TestLoadRejectsInvalidChunking(t *testing.T) {
	path := writeConfig(t, "chunking:\n  min_size: 100\n  max_size: 50\n  overlap: 10\n")
	if _, err := Load(path); err == nil {
		t.Error("min_size >= max_size should be rejected")
	}
}

func TestLoadExpandsRelativePaths(t *testing.T) {
	path := writeConfig(t, "storage:\n  database_path: ./data/db.sqlite\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(cfg.Storage.DatabasePath) {
		t.Errorf("database path not expanded: %q", cfg.Storage.DatabasePath)
	}
	if filepath.Dir(filepath.Dir(cfg.Storage.DatabasePath)) != filepath.Dir(path) {
		t.Errorf("./ path should be relative to config dir, got %q", cfg.Storage.DatabasePath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRecursiveOrDefault(t *testing.T) {
	w := WatchConfig{}
	if !w.RecursiveOrDefault() {
		t.Error("unset recursive should default to true")
	}
	f := false
	w.Recursive = &f
	if w.RecursiveOrDefault() {
		t.Error("explicit false should win")
	}
}
