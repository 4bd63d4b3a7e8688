// Package main is the Kioku CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/provider"
	"github.com/hyperjump/kioku/internal/rag"
	"github.com/hyperjump/kioku/internal/server"
	"github.com/hyperjump/kioku/internal/storage"
	"github.com/hyperjump/kioku/internal/watcher"
	"github.com/hyperjump/kioku/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kioku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
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
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "register":
		runRegister()
	case "search":
		runSearch()
	case "documents":
		runDocuments()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kioku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// newStorage builds the Storage from config: the disabled stub in demo
// mode, SQLite otherwise.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage.Disabled {
		return storage.NewDisabledStorage(), nil
	}
	return storage.NewSQLiteStorage(cfg.Storage.DatabasePath, cfg.Search.MaxLimit)
}

// newProviders builds the embedding and answer providers from config.
// Provider selection lives here, outside the pipeline, which only sees
// the two contracts.
func newProviders(cfg *config.Config) (provider.Embedder, provider.Answerer, error) {
	switch cfg.Provider.Kind {
	case "openai":
		c := provider.NewOpenAIClient(
			cfg.Provider.BaseURL,
			os.Getenv("OPENAI_API_KEY"),
			cfg.Provider.EmbeddingModel,
			cfg.Provider.ChatModel,
		)
		return c, c, nil
	case "ollama":
		c := provider.NewOllamaClient(
			cfg.Provider.BaseURL,
			cfg.Provider.EmbeddingModel,
			cfg.Provider.ChatModel,
		)
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider kind %q (use openai or ollama)", cfg.Provider.Kind)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
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
		zap.Bool("storage_disabled", cfg.Storage.Disabled),
		zap.String("provider", cfg.Provider.Kind),
	)

	store, err := newStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	embedder, answerer, err := newProviders(cfg)
	if err != nil {
		logger.Fatal("Failed to configure provider", zap.Error(err))
	}

	pipeline := rag.NewPipeline(embedder, answerer, store, logger)
	srv := server.NewServer(pipeline, store, &cfg.Server, cfg.Search, logger)

	// Hot-reload search defaults when the config file changes.
	watch := watcher.NewConfigWatcher(resolvedConfigPath, func(path string) {
		reloaded, loadErr := config.Load(path)
		if loadErr != nil {
			logger.Warn("config reload failed", zap.Error(loadErr))
			return
		}
		srv.SetSearchDefaults(reloaded.Search)
	}, logger)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watch.Start(watchCtx); err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watch.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runRegister() {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "Usage: kioku register [flags] <text>")
		os.Exit(1)
	}

	var resp models.RegisterResponse
	if err := postJSON(*serverURL+"/api/v1/register", models.RegisterRequest{Text: text}, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Register failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registered document %d\n", resp.DocumentID)
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	topK := fs.Int("top-k", 0, "number of source documents (0 = server default)")
	_ = fs.Parse(os.Args[2:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Usage: kioku search [flags] <query>")
		os.Exit(1)
	}

	req := models.SearchRequest{Query: query}
	if *topK > 0 {
		req.TopK = topK
	}
	var resp models.SearchResponse
	if err := postJSON(*serverURL+"/api/v1/search", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range resp.Sources {
			fmt.Printf("  %d. [%d] %.3f %s\n", i+1, src.ID, src.Similarity, models.Truncate(src.Text, 80))
		}
	}
}

func runDocuments() {
	fs := flag.NewFlagSet("documents", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	mode := fs.String("mode", "list", "list or cluster")
	limit := fs.Int("limit", 0, "page size (list mode, 0 = server default)")
	offset := fs.Int("offset", 0, "page offset (list mode)")
	threshold := fs.Float64("threshold", -1, "similarity threshold (cluster mode, -1 = server default)")
	_ = fs.Parse(os.Args[2:])

	params := url.Values{}
	params.Set("mode", *mode)
	if *limit > 0 {
		params.Set("limit", strconv.Itoa(*limit))
	}
	if *offset > 0 {
		params.Set("offset", strconv.Itoa(*offset))
	}
	if *threshold >= 0 {
		params.Set("threshold", strconv.FormatFloat(*threshold, 'f', -1, 64))
	}

	var resp models.DocumentsResponse
	if err := getJSON(*serverURL+"/api/v1/documents?"+params.Encode(), &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Documents failed: %v\n", err)
		os.Exit(1)
	}

	if *mode == "cluster" {
		fmt.Printf("%d documents in %d clusters\n", resp.Total, len(resp.Clusters))
		for _, c := range resp.Clusters {
			fmt.Printf("\nCluster %d: %s (%d members)\n", c.ClusterID, c.Label, len(c.Members))
			for _, m := range c.Members {
				fmt.Printf("  [%d] %s\n", m.ID, m.Preview)
			}
		}
		return
	}
	fmt.Printf("%d documents\n", resp.Total)
	for _, d := range resp.Documents {
		fmt.Printf("  [%d] %s (%s)\n", d.ID, d.Preview, d.CreatedAt.Format(time.RFC3339))
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	var resp map[string]interface{}
	if err := getJSON(*serverURL+"/status", &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))
}

func postJSON(url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func getJSON(url string, out interface{}) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode >= 300 {
		var apiErr models.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printUsage() {
	fmt.Println(`Kioku - vector document store with RAG search

Usage:
  kioku server [--config path] [--debug]       Run the HTTP server
  kioku register [--server url] <text>         Store a document
  kioku search [--server url] [--top-k n] <query>
                                               Ask a question over stored documents
  kioku documents [--server url] [--mode list|cluster]
                  [--limit n] [--offset n] [--threshold t]
                                               List or cluster stored documents
  kioku status [--server url]                  Show server status
  kioku version                                Print version`)
}
