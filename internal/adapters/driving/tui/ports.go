// Package tui provides the interactive retrieval tester for buddy.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Retriever answers queries against the knowledge base.
	Retriever driving.RetrieverService
}

// NewPorts creates a new Ports aggregate.
func NewPorts(retriever driving.RetrieverService) *Ports {
	return &Ports{Retriever: retriever}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
