package driven

import (
	"context"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// CollectionStore manages named collections of embedded records.
// Implementations must tolerate concurrent readers.
type CollectionStore interface {
	// GetCollection attaches to an existing collection.
	// Returns ErrCollectionNotFound if it was never created.
	GetCollection(ctx context.Context, name string) (Collection, error)

	// GetOrCreateCollection attaches to a collection, creating it from spec
	// if it does not exist.
	GetOrCreateCollection(ctx context.Context, spec domain.CollectionSpec) (Collection, error)

	// DeleteCollection removes a collection and all its records.
	// Deleting a missing collection is not an error.
	DeleteCollection(ctx context.Context, name string) error

	// ListCollections returns all collections.
	ListCollections(ctx context.Context) ([]domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}

// Collection is a handle to one named collection.
type Collection interface {
	// Info describes the collection.
	Info() domain.CollectionInfo

	// Add stores records in one bulk write. Existing IDs are replaced.
	Add(ctx context.Context, records []domain.Record) error

	// Query returns up to k records nearest to embedding, ordered by
	// ascending cosine distance. Fewer than k is not an error.
	Query(ctx context.Context, embedding []float32, k int) (*domain.QueryResult, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
