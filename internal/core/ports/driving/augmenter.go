package driving

import (
	"context"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

// TurnAugmenter adds knowledge-base context to a conversation turn.
type TurnAugmenter interface {
	// OnUserTurnCompleted injects an ephemeral system message with retrieved
	// context. It reports whether anything was injected.
	OnUserTurnCompleted(ctx context.Context, turn *domain.ChatContext, utterance string) bool
}
