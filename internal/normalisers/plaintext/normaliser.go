// Package plaintext extracts pages from plain text files.
// A form feed separates pages; a file without one is a single page.
package plaintext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// PageSeparator splits a text file into pages.
const PageSeparator = "\f"

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".txt", ".text", ".log", ".csv"}
}

// Supports reports whether path has a supported extension.
func (e *Extractor) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range e.SupportedExtensions() {
		if ext == s {
			return true
		}
	}
	return false
}

// Extract reads the file and returns its non-empty pages.
func (e *Extractor) Extract(_ context.Context, path string) ([]domain.Document, error) {
	data, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	return Paginate(strings.Split(string(data), PageSeparator)), nil
}

// ReadSource reads path, mapping a missing file to ErrSourceNotFound.
func ReadSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Paginate numbers pages from 1 and drops those that are blank.
func Paginate(pages []string) []domain.Document {
	docs := make([]domain.Document, 0, len(pages))
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, domain.Document{Page: i + 1, Text: text})
	}
	return docs
}
