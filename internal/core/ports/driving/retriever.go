package driving

import (
	"context"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// RetrieverService serves read-only lookups against a built collection.
type RetrieverService interface {
	// Lookup returns ranked passages or the reason none could be fetched.
	// topK <= 0 uses the configured default.
	Lookup(ctx context.Context, query string, topK int) (*domain.Retrieval, error)

	// Retrieve returns passages formatted for prompt injection.
	// Every failure degrades to the empty string.
	Retrieve(ctx context.Context, query string, topK int) string

	// Collection describes the attached collection.
	Collection() domain.CollectionInfo

	// TopK returns the default result count.
	TopK() int
}
