package tester

import "errors"

// Error definitions for the tester view.
var (
	// ErrNoRetriever indicates that no retriever was provided.
	ErrNoRetriever = errors.New("retriever is required")

	// ErrInvalidTopK is returned for a malformed /k= prefix.
	ErrInvalidTopK = errors.New("invalid /k= syntax. Use: /k=5 your query here")
)
