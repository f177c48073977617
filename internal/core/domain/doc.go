// Package domain defines the core business entities for Buddy's knowledge base.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The extracted text of one page of a source file
//   - Chunk: A bounded, page-tagged substring of a Document
//   - Record: The stored form of a Chunk inside a collection
//   - QueryResult: The typed response of a collection similarity query
//   - Retrieval: Ranked passages ready for prompt injection
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
