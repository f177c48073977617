// Package chunker provides a sentence-aware sliding-window chunker.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits page documents into overlapping chunks, preferring to end
// a chunk at a sentence boundary in the back half of the window.
// Sizes are counted in characters (runes), not bytes.
type Processor struct {
	chunkSize int
	overlap   int
}

var _ driven.Chunker = (*Processor)(nil)

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// A window that could never advance is rejected with ErrInvalidConfiguration.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	switch {
	case p.chunkSize <= 0:
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d",
			domain.ErrInvalidConfiguration, p.chunkSize)
	case p.overlap < 0:
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d",
			domain.ErrInvalidConfiguration, p.overlap)
	case p.overlap >= p.chunkSize:
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidConfiguration, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split chunks every document in order. Chunk IDs are "chunk_<n>" with n
// counting across all documents of this call.
func (p *Processor) Split(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	next := 0

	for _, doc := range docs {
		var err error
		chunks, err = p.splitDocument(ctx, doc, &next, chunks)
		if err != nil {
			return nil, err
		}
	}

	return chunks, nil
}

func (p *Processor) splitDocument(ctx context.Context, doc domain.Document, next *int, chunks []domain.Chunk) ([]domain.Chunk, error) {
	text := []rune(doc.Text)
	n := len(text)

	for start := 0; start < n; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The window keeps sliding past the end of the page, so a page whose
		// last window is longer than chunkSize-overlap yields a short tail chunk.
		end := start + p.chunkSize
		if end < n {
			if cut := sentenceBoundary(text[start:end], p.chunkSize); cut > 0 {
				end = start + cut
			}
		}
		chunks = appendChunk(chunks, text[start:min(end, n)], doc.Page, next)

		// end > start always holds, so falling back to end guarantees progress
		// when a short sentence cut is swallowed by the overlap.
		nextStart := end - p.overlap
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks, nil
}

// sentenceBoundary returns the length of window up to and including the last
// ". ", "? " or "! " whose punctuation sits past the middle of the window,
// or 0 when there is none. Only ASCII punctuation followed by a space counts.
func sentenceBoundary(window []rune, chunkSize int) int {
	for i := len(window) - 2; 2*i > chunkSize; i-- {
		if window[i+1] != ' ' {
			continue
		}
		switch window[i] {
		case '.', '?', '!':
			return i + 1
		}
	}
	return 0
}

func appendChunk(chunks []domain.Chunk, window []rune, page int, next *int) []domain.Chunk {
	text := strings.TrimSpace(string(window))
	if text == "" {
		return chunks
	}
	chunks = append(chunks, domain.Chunk{
		ID:   fmt.Sprintf("chunk_%d", *next),
		Text: text,
		Page: page,
	})
	*next++
	return chunks
}
