package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Indexing Errors.

	// ErrSourceNotFound indicates the document to index does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrInvalidConfiguration indicates settings that cannot work,
	// such as a chunk overlap that never lets the window advance.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrStorageUnavailable indicates the persistent backend could not be
	// opened or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Retrieval Errors.

	// ErrCollectionNotFound indicates the collection was never built.
	// Run the indexer first.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrMalformedResult indicates a backend response failed validation.
	ErrMalformedResult = errors.New("malformed query result")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or cannot be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
