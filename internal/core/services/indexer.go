package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
	"github.com/custodia-labs/buddy/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.IndexerService = (*Indexer)(nil)

// DefaultChunkerName selects the sentence-aware chunker.
const DefaultChunkerName = "chunker"

// Indexer builds the knowledge-base collection from a source document.
type Indexer struct {
	extractor driven.PageExtractor
	chunkers  driven.ChunkerBuilder
	store     driven.CollectionStore
	embedder  driven.EmbeddingService

	chunkerName string
	description string
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithChunker selects a registered chunker by name.
func WithChunker(name string) IndexerOption {
	return func(i *Indexer) {
		i.chunkerName = name
	}
}

// WithDescription sets the description stored with new collections.
func WithDescription(desc string) IndexerOption {
	return func(i *Indexer) {
		i.description = desc
	}
}

// NewIndexer creates a new indexer.
func NewIndexer(
	extractor driven.PageExtractor,
	chunkers driven.ChunkerBuilder,
	store driven.CollectionStore,
	embedder driven.EmbeddingService,
	opts ...IndexerOption,
) *Indexer {
	i := &Indexer{
		extractor:   extractor,
		chunkers:    chunkers,
		store:       store,
		embedder:    embedder,
		chunkerName: DefaultChunkerName,
		description: domain.DefaultCollectionDescription,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Extract reads the source page by page.
func (i *Indexer) Extract(ctx context.Context, path string) ([]domain.Document, error) {
	docs, err := i.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	logger.Info("Extracted text from %d pages", len(docs))
	return docs, nil
}

// Chunk splits documents with the configured chunker.
// Settings that could never advance are rejected before any work.
func (i *Indexer) Chunk(ctx context.Context, docs []domain.Document, chunkSize, overlap int) ([]domain.Chunk, error) {
	chunker, err := i.chunkers.Build(i.chunkerName, map[string]any{
		"chunk_size": chunkSize,
		"overlap":    overlap,
	})
	if err != nil {
		return nil, err
	}

	chunks, err := chunker.Split(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	logger.Info("Created %d chunks from %d pages", len(chunks), len(docs))
	return chunks, nil
}

// Build embeds chunks and stores them in one bulk write.
// forceRecreate drops any existing collection first; otherwise an existing
// collection is reused and must match the current embedding model.
func (i *Indexer) Build(ctx context.Context, chunks []domain.Chunk, name string, forceRecreate bool) (int, error) {
	if name == "" {
		name = domain.DefaultCollectionName
	}

	if forceRecreate {
		if err := i.store.DeleteCollection(ctx, name); err != nil && !errors.Is(err, domain.ErrCollectionNotFound) {
			return 0, fmt.Errorf("delete collection %q: %w", name, err)
		}
		logger.Info("Dropped collection %q before rebuild", name)
	}

	collection, err := i.store.GetOrCreateCollection(ctx, domain.CollectionSpec{
		Name:           name,
		Description:    i.description,
		EmbeddingModel: i.embedder.ModelName(),
		Dimensions:     i.embedder.Dimensions(),
	})
	if err != nil {
		return 0, fmt.Errorf("open collection %q: %w", name, err)
	}

	info := collection.Info()
	if err := info.Compatible(i.embedder.ModelName(), i.embedder.Dimensions()); err != nil {
		return 0, fmt.Errorf("collection %q: %w (rebuild with --force)", name, err)
	}

	if len(chunks) == 0 {
		logger.Warn("No chunks to store in %q", name)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Text
	}

	logger.Info("Embedding %d chunks with %s", len(chunks), i.embedder.ModelName())
	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: %d embeddings for %d chunks",
			domain.ErrMalformedResult, len(vectors), len(chunks))
	}

	records := make([]domain.Record, len(chunks))
	for n, c := range chunks {
		records[n] = domain.NewRecord(c, vectors[n])
	}

	if err := collection.Add(ctx, records); err != nil {
		return 0, fmt.Errorf("store chunks in %q: %w", name, err)
	}
	logger.Info("Added %d chunks to collection %q", len(records), name)

	return len(records), nil
}

// Run executes the extract, chunk and build pipeline.
func (i *Indexer) Run(ctx context.Context, req driving.IndexRequest) (*driving.IndexReport, error) {
	start := time.Now()
	logger.Section("Indexing")

	if req.Collection == "" {
		req.Collection = domain.DefaultCollectionName
	}

	// Fail on bad settings before reading the source.
	if _, err := i.chunkers.Build(i.chunkerName, map[string]any{
		"chunk_size": req.ChunkSize,
		"overlap":    req.Overlap,
	}); err != nil {
		return nil, err
	}

	docs, err := i.Extract(ctx, req.SourcePath)
	if err != nil {
		return nil, err
	}

	chunks, err := i.Chunk(ctx, docs, req.ChunkSize, req.Overlap)
	if err != nil {
		return nil, err
	}

	stored, err := i.Build(ctx, chunks, req.Collection, req.ForceRecreate)
	if err != nil {
		return nil, err
	}

	report := &driving.IndexReport{
		Collection:     req.Collection,
		Pages:          len(docs),
		Chunks:         len(chunks),
		Stored:         stored,
		AvgChunkLength: averageLength(chunks),
		Duration:       time.Since(start),
	}

	if strings.TrimSpace(req.VerifyQuery) != "" {
		report.Verification = i.verify(ctx, req)
	}

	return report, nil
}

// verify runs a sample query against the fresh collection.
// A failed check is logged and leaves the report without a sample.
func (i *Indexer) verify(ctx context.Context, req driving.IndexRequest) *domain.Retrieval {
	retriever, err := NewRetriever(ctx, i.store, i.embedder, RetrieverConfig{
		Collection: req.Collection,
		TopK:       req.VerifyTopK,
	})
	if err != nil {
		logger.Warn("Verification skipped: %v", err)
		return nil
	}

	result, err := retriever.Lookup(ctx, req.VerifyQuery, req.VerifyTopK)
	if err != nil {
		logger.Warn("Verification query failed: %v", err)
		return nil
	}
	return result
}

func averageLength(chunks []domain.Chunk) int {
	if len(chunks) == 0 {
		return 0
	}
	total := 0
	for _, c := range chunks {
		total += utf8.RuneCountInString(c.Text)
	}
	return total / len(chunks)
}
