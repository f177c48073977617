package normalisers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/normalisers/markdown"
	"github.com/custodia-labs/buddy/internal/normalisers/pdf"
	"github.com/custodia-labs/buddy/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.PageExtractor = (*Registry)(nil)

// Registry routes a path to the first registered extractor that supports it.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.PageExtractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with the built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(markdown.New())
	r.Register(plaintext.New())
	return r
}

// Register adds an extractor. Earlier registrations win.
func (r *Registry) Register(e driven.PageExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, e)
}

// Supports reports whether any registered extractor handles path.
func (r *Registry) Supports(path string) bool {
	return r.find(path) != nil
}

// Extract delegates to the matching extractor.
// A missing path is ErrSourceNotFound whatever its extension.
func (r *Registry) Extract(ctx context.Context, path string) ([]domain.Document, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
	}

	e := r.find(path)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, path)
	}
	return e.Extract(ctx, path)
}

func (r *Registry) find(path string) driven.PageExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.extractors {
		if e.Supports(path) {
			return e
		}
	}
	return nil
}
