package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/logger"
)

// RetrieveInput is the input schema for the retrieve_context tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"what the user just said"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of passages to return (default from settings)"`
}

// RetrieveOutput is the output schema for the retrieve_context tool.
type RetrieveOutput struct {
	// Context is the passages joined for prompt injection. Empty when
	// nothing relevant was found or the lookup failed.
	Context  string          `json:"context"`
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is one ranked passage.
type PassageOutput struct {
	Rank     int     `json:"rank"`
	ID       string  `json:"id"`
	Page     int     `json:"page"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

// MessageInput is one chat message of a turn.
type MessageInput struct {
	Role      string `json:"role" jsonschema:"system, user or assistant"`
	Content   string `json:"content"`
	Ephemeral bool   `json:"ephemeral,omitempty" jsonschema:"message is dropped from long-term history"`
}

// AugmentInput is the input schema for the augment_turn tool.
type AugmentInput struct {
	Utterance string         `json:"utterance" jsonschema:"the completed user utterance"`
	Messages  []MessageInput `json:"messages,omitempty" jsonschema:"the model input assembled so far"`
}

// AugmentOutput is the output schema for the augment_turn tool.
type AugmentOutput struct {
	Messages []MessageInput `json:"messages"`
	Injected bool           `json:"injected"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_context",
		Description: "Look up Buddy's knowledge base for passages relevant to an utterance",
	}, s.handleRetrieve)

	if s.ports.Augmenter != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "augment_turn",
			Description: "Append remembered knowledge to a conversation turn as an ephemeral system message",
		}, s.handleAugment)
	}
}

// handleRetrieve never fails a call on lookup errors; the conversation
// continues without context instead.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	output := RetrieveOutput{Passages: []PassageOutput{}}

	result, err := s.ports.Retriever.Lookup(ctx, input.Query, input.TopK)
	if err != nil {
		logger.Error("retrieve_context failed for %q: %v", input.Query, err)
		return nil, output, nil
	}

	for i, p := range result.Passages {
		output.Passages = append(output.Passages, PassageOutput{
			Rank:     i + 1,
			ID:       p.ID,
			Page:     p.Page,
			Distance: p.Distance,
			Text:     p.Text,
		})
	}
	output.Count = len(output.Passages)
	output.Context = result.Context()

	return nil, output, nil
}

func (s *Server) handleAugment(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AugmentInput,
) (*mcp.CallToolResult, AugmentOutput, error) {
	turn := &domain.ChatContext{}
	for i, m := range input.Messages {
		role, err := parseRole(m.Role)
		if err != nil {
			return nil, AugmentOutput{}, fmt.Errorf("message %d: %w", i, err)
		}
		turn.Add(domain.ChatMessage{Role: role, Content: m.Content, Ephemeral: m.Ephemeral})
	}

	injected := s.ports.Augmenter.OnUserTurnCompleted(ctx, turn, input.Utterance)

	output := AugmentOutput{
		Messages: make([]MessageInput, 0, len(turn.Messages)),
		Injected: injected,
	}
	for _, m := range turn.Messages {
		output.Messages = append(output.Messages, MessageInput{
			Role:      string(m.Role),
			Content:   m.Content,
			Ephemeral: m.Ephemeral,
		})
	}
	return nil, output, nil
}

func parseRole(role string) (domain.Role, error) {
	switch r := domain.Role(role); r {
	case domain.RoleSystem, domain.RoleUser, domain.RoleAssistant:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
}
