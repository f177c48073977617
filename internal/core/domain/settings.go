package domain

import "time"

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the service that turns text into vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderHashing is the built-in offline feature-hashing embedder.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"

	// EmbeddingProviderOllama is local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderHashing, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsLocal returns true if this provider runs on this machine.
func (p EmbeddingProvider) IsLocal() bool {
	return p == EmbeddingProviderHashing || p == EmbeddingProviderOllama
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderHashing:
		return "Hashing (built-in, offline)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns every supported provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderHashing,
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderHashing: "hashing-fnv1a",
		EmbeddingProviderOllama:  "nomic-embed-text",
		EmbeddingProviderOpenAI:  "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"hashing-fnv1a": 512,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's known vector size when non-zero.
	Dimensions int

	// RequestsPerSecond throttles remote providers. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings locates the persistent collection store.
type StorageSettings struct {
	// Path is the directory holding the store.
	Path string

	// Collection is the collection name.
	Collection string
}

// IndexerSettings controls how the knowledge base is built.
type IndexerSettings struct {
	// Source is the document to index.
	Source string

	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// RetrieverSettings controls query-time behaviour.
type RetrieverSettings struct {
	// TopK is the default number of passages per query.
	TopK int

	// Timeout bounds a single lookup.
	Timeout time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Storage   StorageSettings
	Indexer   IndexerSettings
	Retriever RetrieverSettings
	Embedding EmbeddingSettings
}

// Defaults for AppSettings.
const (
	DefaultStoragePath      = "vector_store"
	DefaultSourcePath       = "data/All_about_buddy.pdf"
	DefaultChunkSize        = 800
	DefaultChunkOverlap     = 100
	DefaultTopK             = 3
	DefaultRetrievalTimeout = 5 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// The hashing embedder needs no network or key, so a fresh install works offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Storage: StorageSettings{
			Path:       DefaultStoragePath,
			Collection: DefaultCollectionName,
		},
		Indexer: IndexerSettings{
			Source:    DefaultSourcePath,
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Retriever: RetrieverSettings{
			TopK:    DefaultTopK,
			Timeout: DefaultRetrievalTimeout,
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderHashing,
			Model:    DefaultEmbeddingModels()[EmbeddingProviderHashing],
		},
	}
}
