package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyStoragePath        = "storage.path"
	KeyStorageCollection  = "storage.collection"
	KeyIndexerSource      = "indexer.source"
	KeyIndexerChunkSize   = "indexer.chunk_size"
	KeyIndexerOverlap     = "indexer.overlap"
	KeyRetrieverTopK      = "retriever.top_k"
	KeyRetrieverTimeoutMS = "retriever.timeout_ms"
	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyEmbedDimensions    = "embedding.dimensions"
	KeyEmbedRPS           = "embedding.requests_per_second"
)

// DefaultOllamaURL is used when Ollama is selected without a base URL.
const DefaultOllamaURL = "http://localhost:11434"

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindProvider
)

var settingKinds = map[string]keyKind{
	KeyStoragePath:        kindString,
	KeyStorageCollection:  kindString,
	KeyIndexerSource:      kindString,
	KeyIndexerChunkSize:   kindInt,
	KeyIndexerOverlap:     kindInt,
	KeyRetrieverTopK:      kindInt,
	KeyRetrieverTimeoutMS: kindInt,
	KeyEmbedProvider:      kindProvider,
	KeyEmbedModel:         kindString,
	KeyEmbedBaseURL:       kindString,
	KeyEmbedAPIKey:        kindString,
	KeyEmbedDimensions:    kindInt,
	KeyEmbedRPS:           kindFloat,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.getString(KeyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Path:       s.getString(KeyStoragePath, defaults.Storage.Path),
			Collection: s.getString(KeyStorageCollection, defaults.Storage.Collection),
		},
		Indexer: domain.IndexerSettings{
			Source:    s.getString(KeyIndexerSource, defaults.Indexer.Source),
			ChunkSize: s.getInt(KeyIndexerChunkSize, defaults.Indexer.ChunkSize),
			Overlap:   s.getInt(KeyIndexerOverlap, defaults.Indexer.Overlap),
		},
		Retriever: domain.RetrieverSettings{
			TopK: s.getInt(KeyRetrieverTopK, defaults.Retriever.TopK),
			Timeout: time.Duration(s.getInt(KeyRetrieverTimeoutMS,
				int(defaults.Retriever.Timeout/time.Millisecond))) * time.Millisecond,
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        s.getInt(KeyEmbedDimensions, 0),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, 0),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyStoragePath, settings.Storage.Path},
		{KeyStorageCollection, settings.Storage.Collection},
		{KeyIndexerSource, settings.Indexer.Source},
		{KeyIndexerChunkSize, settings.Indexer.ChunkSize},
		{KeyIndexerOverlap, settings.Indexer.Overlap},
		{KeyRetrieverTopK, settings.Retriever.TopK},
		{KeyRetrieverTimeoutMS, int(settings.Retriever.Timeout / time.Millisecond)},
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyEmbedDimensions, settings.Embedding.Dimensions},
		{KeyEmbedRPS, settings.Embedding.RequestsPerSecond},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(KeyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyEmbedAPIKey, err)
		}
	}

	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number: %q", domain.ErrInvalidInput, key, value)
		}
		parsed = f
	case kindProvider:
		p := domain.EmbeddingProvider(value)
		if !p.IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, value)
		}
		parsed = p.String()
	default:
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Only Ollama talks to a configurable local server.
	if provider == domain.EmbeddingProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = DefaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Dimensions follow the model unless set again explicitly.
	settings.Embedding.Dimensions = 0

	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch {
	case strings.TrimSpace(settings.Storage.Path) == "":
		return fmt.Errorf("%w: %s is empty", domain.ErrInvalidConfiguration, KeyStoragePath)
	case strings.TrimSpace(settings.Storage.Collection) == "":
		return fmt.Errorf("%w: %s is empty", domain.ErrInvalidConfiguration, KeyStorageCollection)
	case settings.Indexer.ChunkSize <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidConfiguration, KeyIndexerChunkSize)
	case settings.Indexer.Overlap < 0 || settings.Indexer.Overlap >= settings.Indexer.ChunkSize:
		return fmt.Errorf("%w: %s must be in [0, %s)",
			domain.ErrInvalidConfiguration, KeyIndexerOverlap, KeyIndexerChunkSize)
	case settings.Retriever.TopK <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidConfiguration, KeyRetrieverTopK)
	case settings.Retriever.Timeout <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidConfiguration, KeyRetrieverTimeoutMS)
	case !settings.Embedding.Provider.IsValid():
		return fmt.Errorf("%w: invalid embedding provider: %s",
			domain.ErrInvalidConfiguration, settings.Embedding.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(&settings.Embedding)
}

// Keys lists the settable keys in sorted order.
func (s *SettingsService) Keys() []string {
	return []string{
		KeyEmbedAPIKey,
		KeyEmbedBaseURL,
		KeyEmbedDimensions,
		KeyEmbedModel,
		KeyEmbedProvider,
		KeyEmbedRPS,
		KeyIndexerChunkSize,
		KeyIndexerOverlap,
		KeyIndexerSource,
		KeyRetrieverTimeoutMS,
		KeyRetrieverTopK,
		KeyStorageCollection,
		KeyStoragePath,
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt keeps an explicit zero so an overlap of 0 survives a round trip.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(KeyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
