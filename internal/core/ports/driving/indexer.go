package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// IndexRequest describes one indexing run.
type IndexRequest struct {
	// SourcePath is the document to index.
	SourcePath string

	// Collection is the target collection name.
	Collection string

	// ChunkSize and Overlap configure the chunker.
	ChunkSize int
	Overlap   int

	// ForceRecreate drops any existing collection before writing.
	ForceRecreate bool

	// VerifyQuery, when set, is run against the fresh collection.
	VerifyQuery string

	// VerifyTopK is the result count for VerifyQuery.
	VerifyTopK int
}

// IndexReport summarises an indexing run.
type IndexReport struct {
	Collection     string
	Pages          int
	Chunks         int
	Stored         int
	AvgChunkLength int
	Duration       time.Duration

	// Verification is the result of VerifyQuery, nil when skipped.
	Verification *domain.Retrieval
}

// IndexerService builds the knowledge-base collection.
// It is the only component that mutates collections.
type IndexerService interface {
	// Extract reads the source page by page.
	Extract(ctx context.Context, path string) ([]domain.Document, error)

	// Chunk splits documents into overlapping chunks.
	Chunk(ctx context.Context, docs []domain.Document, chunkSize, overlap int) ([]domain.Chunk, error)

	// Build embeds and stores chunks in one bulk write.
	Build(ctx context.Context, chunks []domain.Chunk, collection string, forceRecreate bool) (int, error)

	// Run executes extract, chunk and build as one pipeline.
	Run(ctx context.Context, req IndexRequest) (*IndexReport, error)
}
