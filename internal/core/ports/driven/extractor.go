package driven

import (
	"context"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// PageExtractor reads a source file and returns one Document per page.
// Pages whose text is empty after trimming are skipped.
type PageExtractor interface {
	// Extract reads the file at path.
	// Returns ErrSourceNotFound if the path does not exist.
	Extract(ctx context.Context, path string) ([]domain.Document, error)

	// Supports reports whether the extractor handles the given path.
	Supports(path string) bool
}
