package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkovacs-dev/cogno/internal/config"
	"github.com/mkovacs-dev/cogno/internal/extract"
	"github.com/mkovacs-dev/cogno/internal/facts"
	"github.com/mkovacs-dev/cogno/internal/intent"
	"github.com/mkovacs-dev/cogno/internal/knowledge"
	"github.com/mkovacs-dev/cogno/internal/lookup"
	"github.com/mkovacs-dev/cogno/internal/memory"
	"github.com/mkovacs-dev/cogno/internal/orchestrator"
	"github.com/mkovacs-dev/cogno/internal/storage"
)

var (
	cfg       *config.Config
	sessionID string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "cogno",
		Short: "Cogno — cognitive routing and memory engine for conversational assistants",
		Long:  "Cogno classifies utterances, extracts personal facts, answers from a relevance-ranked knowledge store, and keeps an importance-weighted conversational memory with bounded retention.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "default", "conversational session ID")

	rootCmd.AddCommand(
		chatCmd(),
		askCmd(),
		factsCmd(),
		forgetCmd(),
		recallCmd(),
		searchCmd(),
		sweepCmd(),
		statsCmd(),
		serveCmd(),
		mcpCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newBackend(logger *slog.Logger) (storage.Backend, error) {
	if cfg.Storage.Driver == "memory" {
		return storage.NewMemoryBackend(), nil
	}
	if err := os.MkdirAll(dirOf(cfg.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return storage.NewSQLiteBackend(cfg.Storage.Path, logger)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if os.IsPathSeparator(path[i]) {
			return path[:i]
		}
	}
	return "."
}

// engine bundles the wired subsystem for the CLI commands.
type engine struct {
	backend   storage.Backend
	facts     *facts.Book
	knowledge *knowledge.Store
	memory    *memory.Log
	router    *orchestrator.Router
}

// buildEngine wires the full subsystem against the configured backend and
// restores persisted state.
func buildEngine(ctx context.Context, logger *slog.Logger) (*engine, error) {
	backend, err := newBackend(logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage backend: %w", err)
	}

	fb := facts.NewBook(backend, logger)
	if err := fb.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("loading facts: %w", err)
	}

	ks := knowledge.NewStore(backend, cfg.Knowledge.MaxEntries, logger)
	if err := ks.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("loading knowledge: %w", err)
	}
	if _, err := ks.LoadSeeds(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("loading seed knowledge: %w", err)
	}

	mem := memory.NewLog(backend, memory.Config{
		MaxRecords:        cfg.Memory.MaxRecordsPerSession,
		RetentionWindow:   cfg.Memory.RetentionWindow(),
		EvictionThreshold: cfg.Memory.EvictionImportanceThreshold,
	}, logger)
	if err := mem.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("loading conversational memory: %w", err)
	}

	providers := map[lookup.Kind]lookup.Provider{
		lookup.KindDictionary: lookup.NewDictionaryClient(cfg.Lookup.DictionaryBaseURL, logger),
		lookup.KindThesaurus:  lookup.NewDictionaryClient(cfg.Lookup.DictionaryBaseURL, logger),
	}
	if cfg.Claude.APIKey != "" {
		providers[lookup.KindEncyclopedia] = lookup.NewClaudeProvider(cfg.Claude.APIKey, cfg.Claude.Model, logger)
	}
	mux := lookup.NewMux(providers, cfg.Lookup.Timeout(), logger)

	router := orchestrator.NewRouter(
		sessionID,
		intent.NewClassifier(logger),
		extract.NewExtractor(logger),
		ks,
		mem,
		fb,
		mux,
		orchestrator.Options{
			ImmediateResponse:      cfg.Router.ImmediateResponse,
			ImmediateResponseFloor: cfg.Router.ImmediateResponseFloor,
		},
		logger,
	)

	return &engine{
		backend:   backend,
		facts:     fb,
		knowledge: ks,
		memory:    mem,
		router:    router,
	}, nil
}

// Close releases the engine's backend.
func (e *engine) Close() error {
	return e.backend.Close()
}
