package domain

import (
	"fmt"
	"time"
)

// DefaultCollectionName is the collection holding Buddy's knowledge base.
const DefaultCollectionName = "buddy_knowledge"

// DefaultCollectionDescription describes the default collection.
const DefaultCollectionDescription = "Buddy's backstory, personality, and SF knowledge"

// CollectionSpec describes a collection to create.
type CollectionSpec struct {
	// Name identifies the collection within a store.
	Name string

	// Description is free-form text stored with the collection.
	Description string

	// EmbeddingModel is the model that produced the stored vectors.
	EmbeddingModel string

	// Dimensions is the size of every stored vector.
	Dimensions int
}

// Validate checks the collection definition is usable.
func (s CollectionSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: collection name is required", ErrInvalidConfiguration)
	}
	if s.Dimensions <= 0 {
		return fmt.Errorf("%w: collection dimensions must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// CollectionInfo describes an existing collection.
type CollectionInfo struct {
	ID             string
	Name           string
	Description    string
	EmbeddingModel string
	Dimensions     int
	CreatedAt      time.Time
}

// Compatible reports whether vectors described by spec can be stored in,
// or compared against, this collection.
func (c CollectionInfo) Compatible(model string, dimensions int) error {
	if c.Dimensions != dimensions {
		return fmt.Errorf("%w: collection %q has %d dimensions, embedder produces %d",
			ErrInvalidConfiguration, c.Name, c.Dimensions, dimensions)
	}
	if c.EmbeddingModel != "" && model != "" && c.EmbeddingModel != model {
		return fmt.Errorf("%w: collection %q was built with %q, embedder is %q",
			ErrInvalidConfiguration, c.Name, c.EmbeddingModel, model)
	}
	return nil
}
