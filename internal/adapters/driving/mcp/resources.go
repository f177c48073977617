package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/buddy/internal/core/ports/driven"
)

const uriScheme = "buddy://"

// Resource URIs.
const (
	collectionURI   = uriScheme + "collection"
	memoryPromptURI = uriScheme + "prompts/" + driven.PromptMemory
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         collectionURI,
		Name:        "collection",
		Description: "The knowledge-base collection the retriever is attached to",
		MIMEType:    "application/json",
	}, s.handleCollectionResource)

	if s.ports.Prompts != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         memoryPromptURI,
			Name:        "memory-prompt",
			Description: "Template wrapping retrieved passages before they reach the model",
			MIMEType:    "text/plain",
		}, s.handleMemoryPromptResource)
	}
}

type collectionInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	EmbeddingModel string    `json:"embedding_model"`
	Dimensions     int       `json:"dimensions"`
	CreatedAt      time.Time `json:"created_at"`
	TopK           int       `json:"top_k"`
}

func (s *Server) handleCollectionResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := s.ports.Retriever.Collection()

	data, err := json.MarshalIndent(collectionInfo{
		ID:             info.ID,
		Name:           info.Name,
		Description:    info.Description,
		EmbeddingModel: info.EmbeddingModel,
		Dimensions:     info.Dimensions,
		CreatedAt:      info.CreatedAt,
		TopK:           s.ports.Retriever.TopK(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling collection: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleMemoryPromptResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	prompt, err := s.ports.Prompts.Load(driven.PromptMemory)
	if err != nil {
		return nil, fmt.Errorf("loading memory prompt: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     prompt,
		}},
	}, nil
}
