package driven

import (
	"context"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// Chunker splits page documents into chunks.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Split chunks docs in order. IDs are unique within one call.
	Split(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error)
}

// ChunkerBuilder constructs chunkers by name from generic config.
type ChunkerBuilder interface {
	// Build returns a configured chunker.
	// Returns ErrInvalidConfiguration when the settings cannot progress.
	Build(name string, cfg map[string]any) (Chunker, error)
}
