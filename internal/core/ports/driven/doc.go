// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PageExtractor: Reads a source file page by page
//   - Chunker: Splits pages into retrievable chunks
//   - ChunkerBuilder: Builds a Chunker from generic config
//   - EmbeddingService: Turns text into vectors
//   - CollectionStore: Persistent named collections of embedded records
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - EmbeddingValidator: Pings a provider before settings are saved.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or postprocessor package
package driven
