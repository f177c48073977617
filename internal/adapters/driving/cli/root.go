// Package cli provides the cobra command tree for buddy.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/buddy/internal/adapters/driven/ai"
	"github.com/custodia-labs/buddy/internal/adapters/driven/config/file"
	"github.com/custodia-labs/buddy/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
	"github.com/custodia-labs/buddy/internal/core/services"
	"github.com/custodia-labs/buddy/internal/logger"
	"github.com/custodia-labs/buddy/internal/normalisers"
	"github.com/custodia-labs/buddy/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	configDir      string
	storagePath    string
	collectionName string
	verbose        bool
	logJSON        bool
)

// Services and collaborators used by commands. Tests replace them.
var (
	settingsService driving.SettingsService
	promptStore     driven.PromptStore

	extractor   driven.PageExtractor  = normalisers.NewDefaultRegistry()
	chunkers    driven.ChunkerBuilder = postprocessors.NewDefaultRegistry()
	openStore                         = openSQLiteStore
	newEmbedder                       = ai.CreateAndValidateEmbeddingService
)

var rootCmd = &cobra.Command{
	Use:   "buddy",
	Short: "Knowledge base for the Buddy voice agent",
	Long: `buddy builds and serves the knowledge base behind the Buddy voice agent.

Index a source document once with 'buddy index', then query it from the
command line, the interactive tester, or a session manager over MCP.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
		logger.SetJSON(logJSON)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.buddy)")
	flags.StringVar(&storagePath, "storage", "", "vector store directory (overrides storage.path)")
	flags.StringVar(&collectionName, "collection", "", "collection name (overrides storage.collection)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func openSQLiteStore(dir string, readOnly bool) (driven.CollectionStore, error) {
	var opts []sqlite.Option
	if readOnly {
		opts = append(opts, sqlite.WithReadOnly())
	}
	store, err := sqlite.NewStore(dir, opts...)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// getSettingsService builds the file-backed settings service on first use.
func getSettingsService() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return settingsService, nil
}

// getPromptStore builds the file-backed prompt store on first use.
func getPromptStore() (driven.PromptStore, error) {
	if promptStore != nil {
		return promptStore, nil
	}
	dir := ""
	if configDir != "" {
		dir = filepath.Join(configDir, "prompts")
	}
	store, err := file.NewPromptStore(dir)
	if err != nil {
		return nil, err
	}
	promptStore = store
	return promptStore, nil
}

// loadSettings reads settings and applies global flag overrides.
func loadSettings() (*domain.AppSettings, error) {
	svc, err := getSettingsService()
	if err != nil {
		return nil, err
	}
	s, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if storagePath != "" {
		s.Storage.Path = storagePath
	}
	if collectionName != "" {
		s.Storage.Collection = collectionName
	}
	return s, nil
}

// openRetriever attaches a retriever to the configured collection.
// The returned cleanup releases the store and the embedder.
func openRetriever(ctx context.Context, s *domain.AppSettings) (*services.Retriever, func(), error) {
	store, err := openStore(s.Storage.Path, true)
	if err != nil {
		return nil, nil, withIndexHint(err)
	}

	embedder, err := newEmbedder(ctx, &s.Embedding)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	retriever, err := services.NewRetriever(ctx, store, embedder, services.RetrieverConfig{
		Collection: s.Storage.Collection,
		TopK:       s.Retriever.TopK,
		Timeout:    s.Retriever.Timeout,
	})
	if err != nil {
		embedder.Close()
		store.Close()
		return nil, nil, err
	}

	cleanup := func() {
		embedder.Close()
		store.Close()
	}
	return retriever, cleanup, nil
}

func withIndexHint(err error) error {
	if errors.Is(err, domain.ErrCollectionNotFound) {
		return fmt.Errorf("%w. Run 'buddy index' first", err)
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
