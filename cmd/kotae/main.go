// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/analyzer"
	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/pipeline"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/rerank"
	"github.com/hyperjump/kotae/internal/retrieval"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/internal/window"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "kotae server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys for the embedding and generation backends may live in a
	// local .env during development. A missing file is not an error.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	case "ingest":
		runIngest()
	case "delete":
		runDelete()
	case "weights":
		runWeights()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (retrieval stages, watched files, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	pipe := components.Pipeline
	exts := cfg.Watch.Extensions
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(
		cfg.Watch.Directories,
		exts,
		cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, err := pipe.IngestFile(context.Background(), path); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			absPath, absErr := filepath.Abs(path)
			if absErr != nil {
				absPath = path
			}
			if err := pipe.DeleteDocument(context.Background(), pipeline.FileDocID(absPath)); err != nil {
				logger.Warn("watch delete by path failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	srv := server.NewServer(pipe, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" && components.VectorIndex != nil {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchSvc.Stop()
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// queryArgsReorder moves any flags (and their values) that appear after the
// query text to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument.
func queryArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = run the pipeline in-process)`)
	topK := fs.Int("top-k", 5, "number of chunks to retrieve")
	semantic := fs.Float64("semantic", -1, "semantic weight override (requires keyword and rerank too)")
	keywordW := fs.Float64("keyword", -1, "keyword weight override")
	rerankW := fs.Float64("rerank", -1, "rerank weight override")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(queryArgsReorder(os.Args[2:]))

	queryText := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryText == "" {
		fmt.Println("Usage: kotae query [flags] <question>")
		os.Exit(1)
	}

	req := &models.QueryRequest{Query: queryText, TopK: *topK}
	if *semantic >= 0 || *keywordW >= 0 || *rerankW >= 0 {
		req.Weights = &models.SearchWeights{Semantic: *semantic, Keyword: *keywordW, Rerank: *rerankW}
	}

	var response *models.QueryResponse
	if *serverURL != "" {
		res, err := queryViaHTTP(*serverURL, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
		response = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		response, err = components.Pipeline.Query(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
			os.Exit(1)
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Println(response.FormattedAnswer)
		fmt.Println()
		fmt.Printf("# intent=%s complexity=%d style=%s chunks=%d time=%dms\n",
			response.Metadata.Intent,
			response.Metadata.Complexity,
			response.Metadata.Style,
			response.ContextWindow.TotalChunks,
			response.QueryTimeMS,
		)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func queryViaHTTP(serverURL string, req *models.QueryRequest) (*models.QueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/query", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	workers := fs.Int("workers", 4, "parallel workers for directory ingestion")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Cannot stat %s: %v\n", path, err)
		os.Exit(1)
	}
	if info.IsDir() {
		count, err := components.Pipeline.IngestDirectory(ctx, path, cfg.Watch.Extensions, *workers)
		if err != nil {
			fmt.Printf("Ingestion failed after %d documents: %v\n", count, err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d documents from %s\n", count, path)
	} else {
		doc, err := components.Pipeline.IngestFile(ctx, path)
		if err != nil {
			fmt.Printf("Ingestion failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %s (id=%s, status=%s)\n", doc.Filename, doc.ID, doc.Status)
	}

	if cfg.Storage.VectorIndexPath != "" {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed", zap.Error(err))
		}
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = direct storage)`)
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae delete [flags] <document-id>")
		os.Exit(1)
	}
	id := fs.Arg(0)

	if *serverURL != "" {
		req, err := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/documents/"+id, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			os.Exit(1)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Deleted %s\n", id)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()
	if err := components.Pipeline.DeleteDocument(context.Background(), id); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %s\n", id)
}

func runWeights() {
	fs := flag.NewFlagSet("weights", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	semantic := fs.Float64("semantic", -1, "semantic weight")
	keywordW := fs.Float64("keyword", -1, "keyword weight")
	rerankW := fs.Float64("rerank", -1, "rerank weight")
	_ = fs.Parse(os.Args[2:])

	if *semantic < 0 && *keywordW < 0 && *rerankW < 0 {
		resp, err := http.Get(*serverURL + "/api/v1/weights")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		printWeightsResponse(resp)
		return
	}

	w := models.SearchWeights{Semantic: *semantic, Keyword: *keywordW, Rerank: *rerankW}
	body, err := json.Marshal(w)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	req, err := http.NewRequest(http.MethodPut, *serverURL+"/api/v1/weights", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printWeightsResponse(resp)
}

func printWeightsResponse(resp *http.Response) {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var w models.SearchWeights
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		fmt.Fprintf(os.Stderr, "Decode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("semantic: %.2f\nkeyword:  %.2f\nrerank:   %.2f\n", w.Semantic, w.Keyword, w.Rerank)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = direct storage)`)
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var report pipeline.StatusReport
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		report = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		res, err := components.Pipeline.Status(context.Background(),
			cfg.Storage.DatabasePath,
			cfg.Storage.BleveIndexPath,
			cfg.Storage.VectorIndexPath,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		report = *res
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:         %d\n", report.Documents)
		fmt.Printf("chunks:            %d\n", report.Chunks)
		fmt.Printf("vector_size:       %d\n", report.VectorSize)
		fmt.Printf("weights:           semantic=%.2f keyword=%.2f rerank=%.2f\n",
			report.Weights.Semantic, report.Weights.Keyword, report.Weights.Rerank)
		fmt.Printf("disk_usage_bytes:  %d\n", report.DiskUsageBytes)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*pipeline.StatusReport, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var report pipeline.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &report, nil
}

// Components holds the initialized system, for clean shutdown.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	VectorIndex  vector.Index
	KeywordIndex keyword.Index
	Generator    llm.Generator
	Pipeline     *pipeline.Pipeline
}

// Close releases all component resources.
func (c *Components) Close() {
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	vectorIndex, err := vector.New(cfg.Storage.VectorProvider, cfg.Embedding.Dimensions, vector.QdrantSettings{
		URL:        cfg.Storage.Qdrant.URL,
		APIKey:     os.Getenv(cfg.Storage.Qdrant.APIKeyEnv),
		Collection: cfg.Storage.Qdrant.Collection,
	})
	if err != nil {
		// Fall back to memory if the configured provider is unreachable.
		if cfg.Storage.VectorProvider != "memory" && cfg.Storage.VectorProvider != "" {
			logger.Warn("failed to create vector index, falling back to memory",
				zap.String("requested_provider", cfg.Storage.VectorProvider),
				zap.Error(err))
			vectorIndex, err = vector.New("memory", cfg.Embedding.Dimensions, vector.QdrantSettings{})
			if err != nil {
				return nil, fmt.Errorf("failed to initialize vector index: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to initialize vector index: %w", err)
		}
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}
	logger.Info("vector index initialized",
		zap.String("provider", cfg.Storage.VectorProvider),
		zap.Int("size", vectorIndex.Size()))

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	scorer, err := rerank.New(cfg.Rerank.Provider, cfg.Rerank.BaseURL, cfg.Rerank.TimeoutSec)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reranker: %w", err)
	}

	retrOpts := []retrieval.Option{
		retrieval.WithKeyPhraseBoost(cfg.Retrieval.KeyPhraseBoost),
	}
	if debug {
		retrOpts = append(retrOpts, retrieval.WithLogger(logger))
	}
	retriever := retrieval.NewHybridRetriever(
		store, embedder, vectorIndex, keywordIndex, scorer,
		cfg.Retrieval.Weights, cfg.Retrieval.RRFConstant,
		retrOpts...,
	)

	docAnalyzer := analyzer.New()
	chk := chunker.New(docAnalyzer, cfg.Chunking)
	queryAnalyzer := query.NewAnalyzer(cfg.Query)

	winOpts := []window.Option{}
	if debug {
		winOpts = append(winOpts, window.WithLogger(logger))
	}
	optimizer := window.NewOptimizer(cfg.Context.TokenBudget, cfg.Context.OverlapThreshold, winOpts...)

	generator := llm.NewOpenAIGenerator(llm.Options{
		BaseURL:     cfg.Generation.BaseURL,
		APIKey:      os.Getenv(cfg.Generation.APIKeyEnv),
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
	})

	pipeOpts := []pipeline.Option{
		pipeline.WithExtractor(extract.NewExtractor()),
		pipeline.WithEmbeddingModel(cfg.Embedding.Model),
	}
	if debug {
		pipeOpts = append(pipeOpts, pipeline.WithLogger(logger))
	}
	pipe := pipeline.New(
		store, embedder, vectorIndex, keywordIndex, retriever,
		chk, docAnalyzer, queryAnalyzer, optimizer, generator,
		pipeOpts...,
	)

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		VectorIndex:  vectorIndex,
		KeywordIndex: keywordIndex,
		Generator:    generator,
		Pipeline:     pipe,
	}, nil
}

func newEmbedder(cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "onnx":
		onnxEmbedder, err := embedding.NewONNXEmbedder(
			cfg.Embedding.ModelPath,
			cfg.Embedding.Dimensions,
			cfg.Embedding.MaxTokens,
			cfg.Embedding.CacheSize,
		)
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using mock embeddings", zap.Error(err))
			return embedding.NewMockEmbedder(cfg.Embedding.Dimensions), nil
		}
		return onnxEmbedder, nil
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimensions), nil
	case "openai", "":
		return embedding.NewOpenAIEmbedder(embedding.OpenAIOptions{
			BaseURL:    cfg.Embedding.BaseURL,
			APIKey:     os.Getenv(cfg.Embedding.APIKeyEnv),
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			CacheSize:  cfg.Embedding.CacheSize,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q (supported: openai, onnx, mock)", cfg.Embedding.Provider)
	}
}

func printUsage() {
	fmt.Println(`kotae - Retrieval-augmented question answering over local documents

Usage:
  kotae server [flags]              Start the HTTP server
  kotae query [flags] <question>    Ask a question against the indexed corpus
  kotae ingest [flags] <path>       Ingest a file or directory
  kotae delete [flags] <id>         Delete a document and its chunks
  kotae weights [flags]             Show or update retrieval weights
  kotae status [flags]              Show corpus and index status
  kotae version                     Show version
  kotae help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging (retrieval stages, watched files, etc.)

Query Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to run in-process.
  --config string    Config file path (in-process mode)
  --top-k int        Number of chunks to retrieve (default: 5)
  --semantic float   Semantic weight override (set all three to override)
  --keyword float    Keyword weight override
  --rerank float     Rerank weight override
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path
  --workers int      Parallel workers for directory ingestion (default: 4)

Weights Flags:
  --server string    Server URL (default: http://localhost:8080)
  --semantic float   New semantic weight (with --keyword and --rerank; omit all to show current)
  --keyword float    New keyword weight
  --rerank float     New rerank weight

Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  --config string    Config file path (direct storage mode)
  --output string    Output format: text or json (default: text)`)
}
