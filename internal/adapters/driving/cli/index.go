package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/buddy/internal/connectors/filesystem"
	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
	"github.com/custodia-labs/buddy/internal/core/services"
	"github.com/custodia-labs/buddy/internal/logger"
)

// verifyQuery is run against a fresh collection to confirm it answers.
const (
	verifyQuery      = "Tell me about Buddy's personality"
	verifyTopK       = 2
	verifySampleSize = 100
)

var (
	indexForce     bool
	indexSource    string
	indexChunkSize int
	indexOverlap   int
	indexWatch     bool
	indexNoVerify  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the knowledge base from the source document",
	Long: `Extracts the source document page by page, splits it into overlapping
chunks, embeds them and stores them in the collection.

An existing collection is reused and chunks with the same IDs are replaced.
Use --force to drop the collection first. With --watch the command stays
running and rebuilds whenever the source file changes.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "drop and recreate the collection")
	indexCmd.Flags().StringVarP(&indexSource, "source", "s", "", "document to index (overrides indexer.source)")
	indexCmd.Flags().IntVar(&indexChunkSize, "chunk-size", 0, "chunk size in characters (overrides indexer.chunk_size)")
	indexCmd.Flags().IntVar(&indexOverlap, "overlap", 0, "chunk overlap in characters (overrides indexer.overlap)")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "rebuild when the source changes")
	indexCmd.Flags().BoolVar(&indexNoVerify, "no-verify", false, "skip the verification query")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	req := buildIndexRequest(cmd, s)

	store, err := openStore(s.Storage.Path, false)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := commandContext(cmd)
	embedder, err := newEmbedder(ctx, &s.Embedding)
	if err != nil {
		return err
	}
	defer embedder.Close()

	indexer := services.NewIndexer(extractor, chunkers, store, embedder)

	report, err := indexer.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	printIndexReport(cmd, report, s.Storage.Path)

	if !indexWatch {
		return nil
	}
	req.ForceRecreate = true
	return watchSource(ctx, cmd, indexer, req, s.Storage.Path)
}

// buildIndexRequest merges settings with the flags set on cmd. Explicit chunk
// values pass through unchanged so the indexer can reject bad ones.
func buildIndexRequest(cmd *cobra.Command, s *domain.AppSettings) driving.IndexRequest {
	req := driving.IndexRequest{
		SourcePath:    s.Indexer.Source,
		Collection:    s.Storage.Collection,
		ChunkSize:     s.Indexer.ChunkSize,
		Overlap:       s.Indexer.Overlap,
		ForceRecreate: indexForce,
	}
	if indexSource != "" {
		req.SourcePath = indexSource
	}
	if cmd.Flags().Changed("chunk-size") {
		req.ChunkSize = indexChunkSize
	}
	if cmd.Flags().Changed("overlap") {
		req.Overlap = indexOverlap
	}
	if !indexNoVerify {
		req.VerifyQuery = verifyQuery
		req.VerifyTopK = verifyTopK
	}
	return req
}

func printIndexReport(cmd *cobra.Command, report *driving.IndexReport, storage string) {
	cmd.Printf("Extracted text from %d pages\n", report.Pages)
	cmd.Printf("Created %d chunks (average %d characters)\n", report.Chunks, report.AvgChunkLength)
	cmd.Printf("Stored %d chunks in collection %q at %s\n", report.Stored, report.Collection, storage)
	cmd.Printf("Done in %s\n", report.Duration.Round(time.Millisecond))

	if report.Verification == nil {
		return
	}
	passages := report.Verification.Passages
	cmd.Println()
	cmd.Printf("Verification query: %q\n", report.Verification.Query)
	cmd.Printf("Found %d results\n", len(passages))
	if len(passages) > 0 {
		cmd.Printf("Sample: %s\n", domain.Preview(passages[0].Text, verifySampleSize))
	}
}

// watchSource rebuilds the collection each time the source changes.
func watchSource(
	ctx context.Context,
	cmd *cobra.Command,
	indexer driving.IndexerService,
	req driving.IndexRequest,
	storage string,
) error {
	watcher := filesystem.NewWatcher(req.SourcePath, filesystem.DefaultDebounce)
	defer watcher.Close()

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching %s: %w", req.SourcePath, err)
	}

	cmd.Printf("\nWatching %s for changes (Ctrl+C to stop)\n", watcher.Path())
	for change := range changes {
		if change.Type == filesystem.ChangeDeleted {
			logger.Warn("Source %s was removed; keeping the current collection", change.Path)
			continue
		}

		logger.Info("Source %s %s, rebuilding", change.Path, change.Type)
		report, err := indexer.Run(ctx, req)
		if err != nil {
			logger.Error("Rebuild failed: %v", err)
			continue
		}
		cmd.Println()
		printIndexReport(cmd, report, storage)
	}
	return nil
}
