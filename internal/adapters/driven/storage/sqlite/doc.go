// Package sqlite provides a SQLite-based implementation of driven.CollectionStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each collection row carries the
// embedding model and dimension it was built with; records hold the chunk text,
// JSON metadata and the embedding as a little-endian float32 blob.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory (NNN_name.up.sql). Only writers run migrations.
//
// # Data Location
//
// The database is stored at <dataDir>/buddy.db. dataDir defaults to
// ./vector_store relative to the working directory.
//
// # Concurrency
//
// The database runs in WAL mode with a busy timeout. Retrievers open it with
// WithReadOnly, which sets query_only so several processes can read the
// same file while nothing writes.
//
// Similarity search is a brute-force cosine scan over the collection, which
// is adequate for a single-document knowledge base.
package sqlite
