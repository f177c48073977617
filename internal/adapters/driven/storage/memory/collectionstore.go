package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/buddy/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var (
	_ driven.CollectionStore = (*CollectionStore)(nil)
	_ driven.Collection      = (*collection)(nil)
)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]*collection),
	}
}

// GetCollection attaches to an existing collection.
func (s *CollectionStore) GetCollection(_ context.Context, name string) (driven.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return c, nil
}

// GetOrCreateCollection attaches to a collection, creating it if missing.
func (s *CollectionStore) GetOrCreateCollection(_ context.Context, spec domain.CollectionSpec) (driven.Collection, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[spec.Name]; ok {
		return c, nil
	}

	c := &collection{
		info: domain.CollectionInfo{
			ID:             uuid.New().String(),
			Name:           spec.Name,
			Description:    spec.Description,
			EmbeddingModel: spec.EmbeddingModel,
			Dimensions:     spec.Dimensions,
			CreatedAt:      time.Now(),
		},
		index: make(map[string]int),
	}
	s.collections[spec.Name] = c
	return c, nil
}

// DeleteCollection removes a collection. Missing collections are ignored.
func (s *CollectionStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// ListCollections returns all collections ordered by name.
func (s *CollectionStore) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]domain.CollectionInfo, 0, len(s.collections))
	for _, c := range s.collections {
		infos = append(infos, c.Info())
	}
	slices.SortFunc(infos, func(a, b domain.CollectionInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return infos, nil
}

// Close is a no-op for the memory store.
func (s *CollectionStore) Close() error {
	return nil
}

type collection struct {
	mu      sync.RWMutex
	info    domain.CollectionInfo
	records []vector.Candidate
	index   map[string]int
	seq     int64
}

func (c *collection) Info() domain.CollectionInfo {
	return c.info
}

func (c *collection) Add(ctx context.Context, records []domain.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if len(r.Embedding) != c.info.Dimensions {
			return fmt.Errorf("%w: record %s has %d dimensions, collection expects %d",
				domain.ErrInvalidInput, r.ID, len(r.Embedding), c.info.Dimensions)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range records {
		r.Embedding = slices.Clone(r.Embedding)
		if i, ok := c.index[r.ID]; ok {
			c.records[i].Record = r
			continue
		}
		c.seq++
		c.index[r.ID] = len(c.records)
		c.records = append(c.records, vector.Candidate{Record: r, Seq: c.seq})
	}
	return nil
}

func (c *collection) Query(ctx context.Context, embedding []float32, k int) (*domain.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return vector.Rank(embedding, c.records, k), nil
}

func (c *collection) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records), nil
}
