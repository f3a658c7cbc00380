// Package main is the statsearch CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tooxie/statista-demo-app/internal/cli"
	"github.com/tooxie/statista-demo-app/internal/config"
	"github.com/tooxie/statista-demo-app/internal/embedding"
	"github.com/tooxie/statista-demo-app/internal/ingest"
	"github.com/tooxie/statista-demo-app/internal/models"
	"github.com/tooxie/statista-demo-app/internal/search"
	"github.com/tooxie/statista-demo-app/internal/server"
	"github.com/tooxie/statista-demo-app/internal/storage"
	"github.com/tooxie/statista-demo-app/internal/vector"
	"github.com/tooxie/statista-demo-app/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/statsearch/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. A .env file in the working directory is loaded before the
// config so env overrides apply in both cases.
func loadConfig(path string) (*config.Config, string, error) {
	_ = godotenv.Load()
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				applyEnvOverrides(cfg)
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, path, nil
}

// applyEnvOverrides lets deployment environments adjust paths and the listen
// port without editing the config file.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("STATSEARCH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STATSEARCH_DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("STATSEARCH_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("STATSEARCH_MODEL_PATH"); v != "" {
		cfg.Embedding.ModelPath = v
	}
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "find":
		runFind()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("statsearch version %s\n", version)
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
	debug := fs.Bool("debug", false, "enable debug logging (ingestion, per-query details)")
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

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Service, components.Storage, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildFindQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildFindQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func printFindUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: statsearch find [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  statsearch find consumer price inflation
  statsearch find "consumer price inflation"       # same as above
  statsearch find --limit 10 unemployment rate
  statsearch find --output json smartphone sales    # structured JSON for other apps
  statsearch find --server "" energy prices         # direct storage, no server needed
`)
}

func runFind() {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8000", "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", models.DefaultLimit, "number of results")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printFindUsage(fs) }
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		printFindUsage(fs)
		os.Exit(1)
	}
	queryStr := buildFindQuery(fs.Args())
	if queryStr == "" {
		printFindUsage(fs)
		os.Exit(1)
	}
	format := cli.ParseFormat(*outputFormat)

	query := &models.SearchQuery{Query: queryStr, Limit: *limit}

	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids a second
		// process re-embedding the corpus against the same database).
		response, err := findViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Find failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteFindResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
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

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Service.Find(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Find failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteFindResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func findViaHTTP(serverURL string, query *models.SearchQuery) (*models.FindResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/find", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.FindResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

// statusResponse is the shape of GET /status.
type statusResponse struct {
	Statistics     int64                  `json:"statistics"`
	IndexSize      int                    `json:"index_size"`
	DiskUsageBytes *int64                 `json:"disk_usage_bytes,omitempty"`
	Config         map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8000", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
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
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		count, err := components.Storage.CountStatistics(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count statistics failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Statistics: count,
			IndexSize:  components.Service.IndexSize(),
			Config: map[string]interface{}{
				"embedding_dimensions": cfg.Embedding.Dimensions,
				"database_path":        cfg.Storage.DatabasePath,
				"corpus_path":          cfg.Corpus.Path,
			},
		}
		if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath); err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("statistics:        %d   # records in the store\n", status.Statistics)
		fmt.Printf("index_size:        %d   # vectors in the similarity index\n", status.IndexSize)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes:  %d\n", *status.DiskUsageBytes)
		}
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"embedding_dimensions", "database_path", "corpus_path"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-20s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Index    *vector.FlatIndex
	Service  *search.Service
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

// initializeComponents wires storage, the embedder, ingestion and the query
// service. Ingestion failure is fatal; an empty corpus is not, the service
// just starts degraded and answers every query with 503.
func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX embedder unavailable, using hash embedder",
			zap.String("model_path", cfg.Embedding.ModelPath), zap.Error(err))
		embedder = embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	loader := ingest.NewLoader(store, embedder, ingest.WithLogger(logger))
	ctx := context.Background()
	if err := loader.Initialize(ctx, cfg.Corpus.Path); err != nil {
		_ = store.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to ingest corpus: %w", err)
	}

	index, err := ingest.BuildIndex(ctx, store)
	if err != nil {
		if !errors.Is(err, vector.ErrEmptyCorpus) {
			_ = store.Close()
			_ = embedder.Close()
			return nil, fmt.Errorf("failed to build index: %w", err)
		}
		logger.Warn("corpus is empty, queries will be unavailable")
		index = nil
	} else {
		logger.Info("index built",
			zap.Int("vectors", index.Size()),
			zap.Int("dimensions", index.Dimensions()))
	}

	service := search.NewService(store, embedder, index, search.WithLogger(logger))

	return &Components{
		Storage:  store,
		Embedder: embedder,
		Index:    index,
		Service:  service,
	}, nil
}

func printUsage() {
	fmt.Println(`statsearch - Semantic search over a statistics corpus

Usage:
  statsearch server [flags]         Start the HTTP server
  statsearch find [flags] <query>   Find statistics matching a query
  statsearch status [flags]         Show store/index status
  statsearch version                Show version
  statsearch help                   Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/statsearch/config.yaml)
  --debug            Enable debug logging

Find Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct storage.
  --limit int        Number of results (default: 5)
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  statsearch server
  statsearch find "consumer price inflation"
  statsearch find --limit 10 unemployment rate
  statsearch find --output json smartphone sales
  statsearch status --output json`)
}
