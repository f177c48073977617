// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/buddy/internal/adapters/driven/embedding"
	"github.com/custodia-labs/buddy/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/buddy/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/buddy/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// OpenAIKeyEnv is consulted when no API key is configured for OpenAI.
const OpenAIKeyEnv = "OPENAI_API_KEY"

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'buddy settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'buddy settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// Unconfigured settings are not an error; there is nothing to validate yet.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !withEnvKey(*settings).IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Remote providers are wrapped in a rate limiter when RequestsPerSecond is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrInvalidConfiguration)
	}
	resolved := withEnvKey(*settings)
	if !resolved.IsConfigured() {
		if resolved.Provider.RequiresAPIKey() {
			return nil, fmt.Errorf("%w: %s requires an API key (set embedding.api_key or %s)",
				domain.ErrInvalidConfiguration, resolved.Provider, OpenAIKeyEnv)
		}
		return nil, fmt.Errorf("%w: unsupported embedding provider: %q",
			domain.ErrInvalidConfiguration, resolved.Provider)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch resolved.Provider {
	case domain.EmbeddingProviderHashing:
		return hashing.NewEmbeddingService(resolved.Dimensions), nil

	case domain.EmbeddingProviderOllama:
		svc = createOllamaEmbedding(&resolved)

	case domain.EmbeddingProviderOpenAI:
		svc, err = createOpenAIEmbedding(&resolved)
		if err != nil {
			return nil, err
		}
	}

	return embedding.NewRateLimited(svc, embedding.RateLimitConfig{
		TextsPerSecond: resolved.RequestsPerSecond,
	}), nil
}

// withEnvKey fills a missing OpenAI key from the environment.
func withEnvKey(settings domain.EmbeddingSettings) domain.EmbeddingSettings {
	if settings.Provider == domain.EmbeddingProviderOpenAI && settings.APIKey == "" {
		settings.APIKey = os.Getenv(OpenAIKeyEnv)
	}
	return settings
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions,
	})
}
