// Package mcp exposes Buddy's knowledge base over the Model Context Protocol,
// so a voice session manager can fetch context for each user turn.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever is required")
