// Package embedding holds decorators shared by the embedding adapters.
package embedding

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// RateLimitConfig holds rate limiting configuration for a provider.
type RateLimitConfig struct {
	// TextsPerSecond is the sustained number of texts sent for embedding.
	TextsPerSecond float64

	// BurstSize is the largest group of texts sent at once.
	// Zero derives it from TextsPerSecond.
	BurstSize int
}

// RateLimited throttles an embedding service with a token bucket.
// Each text costs one token, so a batch is forwarded in groups of at most
// BurstSize texts.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter
	burst   int
}

// NewRateLimited wraps inner. A non-positive rate returns inner unchanged.
func NewRateLimited(inner driven.EmbeddingService, cfg RateLimitConfig) driven.EmbeddingService {
	if cfg.TextsPerSecond <= 0 {
		return inner
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = max(1, int(math.Ceil(cfg.TextsPerSecond)))
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(cfg.TextsPerSecond), burst),
		burst:   burst,
	}
}

// Embed waits for one token then embeds text.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.inner.Embed(ctx, text)
}

// EmbedBatch forwards texts in rate-limited groups and preserves order.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += r.burst {
		end := min(start+r.burst, len(texts))
		if err := r.limiter.WaitN(ctx, end-start); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		group, err := r.inner.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, group...)
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping is not throttled.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}
