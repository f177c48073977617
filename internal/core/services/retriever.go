package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
	"github.com/custodia-labs/buddy/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrieverService = (*Retriever)(nil)

// previewLength is how much of each passage is logged.
const previewLength = 100

// RetrieverConfig configures a Retriever.
type RetrieverConfig struct {
	// Collection is the collection to attach to.
	Collection string

	// TopK is the default number of passages per query.
	TopK int

	// Timeout bounds one lookup, including the query embedding.
	Timeout time.Duration
}

// Retriever answers queries against one read-only collection.
// It holds no mutable state after construction and is safe for concurrent use.
type Retriever struct {
	collection driven.Collection
	embedder   driven.EmbeddingService
	topK       int
	timeout    time.Duration
}

// NewRetriever attaches to an existing collection.
// A missing collection returns ErrCollectionNotFound; a collection built with
// a different embedding model returns ErrInvalidConfiguration.
func NewRetriever(
	ctx context.Context,
	store driven.CollectionStore,
	embedder driven.EmbeddingService,
	cfg RetrieverConfig,
) (*Retriever, error) {
	if store == nil || embedder == nil {
		return nil, fmt.Errorf("%w: retriever needs a store and an embedder", domain.ErrInvalidConfiguration)
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollectionName
	}
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultRetrievalTimeout
	}

	collection, err := store.GetCollection(ctx, cfg.Collection)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return nil, fmt.Errorf("%w. Run 'buddy index' first", err)
		}
		return nil, err
	}

	info := collection.Info()
	if err := info.Compatible(embedder.ModelName(), embedder.Dimensions()); err != nil {
		return nil, fmt.Errorf("collection %q: %w", info.Name, err)
	}

	if n, err := collection.Count(ctx); err == nil {
		logger.Info("Retriever attached to %q (%d chunks, model %s)", info.Name, n, info.EmbeddingModel)
	}

	return &Retriever{
		collection: collection,
		embedder:   embedder,
		topK:       cfg.TopK,
		timeout:    cfg.Timeout,
	}, nil
}

// Lookup embeds query and returns the nearest passages, best first.
// An empty query returns an empty result without touching the backend.
func (r *Retriever) Lookup(ctx context.Context, query string, topK int) (*domain.Retrieval, error) {
	result := &domain.Retrieval{Query: query}
	if strings.TrimSpace(query) == "" {
		return result, nil
	}
	if topK <= 0 {
		topK = r.topK
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	logger.Debug("Retrieving context for: %q (top_k=%d)", query, topK)

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	res, err := r.collection.Query(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	result.Passages = res.Passages()
	if len(result.Passages) == 0 {
		logger.Info("No relevant context found for: %q", query)
		return result, nil
	}

	logger.Info("Retrieved %d chunks for: %q", len(result.Passages), query)
	for i, p := range result.Passages {
		logger.WithFields(logger.Fields{
			"rank":     i + 1,
			"page":     p.Page,
			"distance": fmt.Sprintf("%.4f", p.Distance),
		}).Debug(domain.Preview(p.Text, previewLength))
	}

	return result, nil
}

// Retrieve returns the passages joined by blank lines.
// Any failure is logged and reported as no context.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) string {
	result, err := r.Lookup(ctx, query, topK)
	if err != nil {
		logger.Error("Error retrieving context: %v", err)
		return ""
	}
	return result.Context()
}

// Collection describes the attached collection.
func (r *Retriever) Collection() domain.CollectionInfo {
	return r.collection.Info()
}

// TopK returns the default result count.
func (r *Retriever) TopK() int {
	return r.topK
}
