// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Indexer is the only service that writes collections; the Retriever
// and TurnAugmenter only read.
package services
