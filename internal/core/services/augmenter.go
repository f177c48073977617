package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
	"github.com/custodia-labs/buddy/internal/logger"
)

// Ensure TurnAugmenter implements the interfaces.
var (
	_ driving.TurnAugmenter   = (*TurnAugmenter)(nil)
	_ driven.PromptStoreAware = (*TurnAugmenter)(nil)
)

// TurnAugmenter injects retrieved context into a turn before generation.
type TurnAugmenter struct {
	retriever driving.RetrieverService
	topK      int

	mu      sync.RWMutex
	prompts driven.PromptStore
}

// NewTurnAugmenter creates an augmenter. topK <= 0 uses the retriever default.
func NewTurnAugmenter(retriever driving.RetrieverService, topK int) *TurnAugmenter {
	return &TurnAugmenter{retriever: retriever, topK: topK}
}

// SetPromptStore lets users customise the memory template.
func (a *TurnAugmenter) SetPromptStore(store driven.PromptStore) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prompts = store
}

// OnUserTurnCompleted appends one ephemeral system message when the
// knowledge base has something relevant to say about utterance.
func (a *TurnAugmenter) OnUserTurnCompleted(ctx context.Context, turn *domain.ChatContext, utterance string) bool {
	if turn == nil || strings.TrimSpace(utterance) == "" {
		return false
	}

	passages := a.retriever.Retrieve(ctx, utterance, a.topK)
	if passages == "" {
		return false
	}

	turn.Add(domain.ChatMessage{
		Role:      domain.RoleSystem,
		Content:   fmt.Sprintf(a.template(), passages),
		Ephemeral: true,
	})
	logger.Debug("Injected %d characters of context into turn", len(passages))
	return true
}

// template returns the memory prompt, falling back to the built-in one when
// the custom template is missing or lacks exactly one %s.
func (a *TurnAugmenter) template() string {
	a.mu.RLock()
	store := a.prompts
	a.mu.RUnlock()

	if store == nil {
		return driven.DefaultMemoryPrompt
	}
	tpl, err := store.Load(driven.PromptMemory)
	if err != nil || strings.Count(tpl, "%s") != 1 || strings.Count(tpl, "%") != 1 {
		if err == nil {
			logger.Warn("Ignoring memory prompt without a single %%s placeholder")
		}
		return driven.DefaultMemoryPrompt
	}
	return tpl
}
