package services

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

// stubEmbedder returns fixed vectors per text and counts calls.
type stubEmbedder struct {
	vectors map[string][]float32
	dims    int
	model   string
	err     error
	block   bool
	calls   atomic.Int32
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, e.dims), nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int              { return e.dims }
func (e *stubEmbedder) ModelName() string            { return e.model }
func (e *stubEmbedder) Ping(_ context.Context) error { return nil }
func (e *stubEmbedder) Close() error                 { return nil }

// stubCollection serves canned query results.
type stubCollection struct {
	info    domain.CollectionInfo
	result  *domain.QueryResult
	err     error
	queries atomic.Int32
}

func (c *stubCollection) Info() domain.CollectionInfo { return c.info }

func (c *stubCollection) Add(_ context.Context, _ []domain.Record) error { return c.err }

func (c *stubCollection) Query(_ context.Context, _ []float32, _ int) (*domain.QueryResult, error) {
	c.queries.Add(1)
	return c.result, c.err
}

func (c *stubCollection) Count(_ context.Context) (int, error) { return c.result.Len(), nil }

// stubStore hands out a single collection or a fixed error.
type stubStore struct {
	collection *stubCollection
	err        error
}

func (s *stubStore) GetCollection(_ context.Context, name string) (driven.Collection, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.collection == nil {
		return nil, domain.ErrCollectionNotFound
	}
	return s.collection, nil
}

func (s *stubStore) GetOrCreateCollection(ctx context.Context, spec domain.CollectionSpec) (driven.Collection, error) {
	return s.GetCollection(ctx, spec.Name)
}

func (s *stubStore) DeleteCollection(_ context.Context, _ string) error { return s.err }

func (s *stubStore) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	return nil, s.err
}

func (s *stubStore) Close() error { return nil }
