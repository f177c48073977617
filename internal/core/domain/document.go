package domain

// Document is the extracted text of a single page of a source file.
// Extractors drop pages whose text is empty after trimming.
type Document struct {
	// Page is the 1-based page number within the source file.
	Page int

	// Text is the raw extracted text of the page.
	Text string
}

// Chunk represents a retrievable unit cut from a Document.
// Chunks are produced by sliding a fixed-size window over each page.
type Chunk struct {
	// ID is unique within one indexing run (e.g. "chunk_0").
	ID string

	// Text is the chunk content, trimmed and never empty.
	Text string

	// Page is inherited from the source Document.
	Page int
}

// ChunkMetadata is the metadata stored alongside every record.
type ChunkMetadata struct {
	// Page is the page the chunk was cut from.
	Page int `json:"page"`
}

// Record is a chunk as persisted in a collection.
type Record struct {
	// ID is the unique key of the record within its collection.
	ID string

	// Document is the chunk text.
	Document string

	// Metadata holds provenance for diagnostics.
	Metadata ChunkMetadata

	// Embedding is the vector representation of Document.
	Embedding []float32
}

// NewRecord builds a record from a chunk and its embedding.
func NewRecord(chunk Chunk, embedding []float32) Record {
	return Record{
		ID:        chunk.ID,
		Document:  chunk.Text,
		Metadata:  ChunkMetadata{Page: chunk.Page},
		Embedding: embedding,
	}
}
