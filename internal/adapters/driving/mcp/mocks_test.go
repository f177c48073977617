package mcp

import (
	"context"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// mockRetriever is a mock implementation of driving.RetrieverService.
type mockRetriever struct {
	result    *domain.Retrieval
	err       error
	info      domain.CollectionInfo
	topK      int
	lastQuery string
	lastTopK  int
}

func (m *mockRetriever) Lookup(_ context.Context, query string, topK int) (*domain.Retrieval, error) {
	m.lastQuery = query
	m.lastTopK = topK
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.Retrieval{Query: query}, nil
	}
	return m.result, nil
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, topK int) string {
	r, err := m.Lookup(ctx, query, topK)
	if err != nil {
		return ""
	}
	return r.Context()
}

func (m *mockRetriever) Collection() domain.CollectionInfo {
	return m.info
}

func (m *mockRetriever) TopK() int {
	return m.topK
}

// mockAugmenter is a mock implementation of driving.TurnAugmenter.
type mockAugmenter struct {
	memory string
}

func (m *mockAugmenter) OnUserTurnCompleted(_ context.Context, turn *domain.ChatContext, utterance string) bool {
	if m.memory == "" || utterance == "" {
		return false
	}
	turn.Add(domain.ChatMessage{Role: domain.RoleSystem, Content: m.memory, Ephemeral: true})
	return true
}

// mockPrompts is a mock implementation of driven.PromptStore.
type mockPrompts struct {
	prompt string
	err    error
}

func (m *mockPrompts) Load(_ string) (string, error) {
	return m.prompt, m.err
}

func (m *mockPrompts) Reload() {}
