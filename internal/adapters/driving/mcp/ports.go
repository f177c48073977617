package mcp

import (
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
)

// Ports aggregates the services the MCP server exposes.
type Ports struct {
	// Retriever serves knowledge-base lookups.
	Retriever driving.RetrieverService

	// Augmenter injects context into conversation turns. Optional.
	Augmenter driving.TurnAugmenter

	// Prompts exposes the memory template. Optional.
	Prompts driven.PromptStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
