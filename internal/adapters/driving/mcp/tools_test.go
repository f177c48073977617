package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked passages and context", func(t *testing.T) {
		retriever := &mockRetriever{
			result: &domain.Retrieval{
				Query: "favourite food",
				Passages: []domain.Passage{
					{ID: "chunk_3", Text: "Buddy loves sourdough.", Page: 2, Distance: 0.12},
					{ID: "chunk_7", Text: "Burritos in the Mission.", Page: 4, Distance: 0.31},
				},
			},
		}
		server, err := NewServer(&Ports{Retriever: retriever})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "favourite food", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "Buddy loves sourdough.\n\nBurritos in the Mission.", output.Context)
		assert.Equal(t, PassageOutput{Rank: 1, ID: "chunk_3", Page: 2, Distance: 0.12, Text: "Buddy loves sourdough."}, output.Passages[0])
		assert.Equal(t, 2, output.Passages[1].Rank)
		assert.Equal(t, 2, retriever.lastTopK)
	})

	t.Run("zero top_k is passed through for the default", func(t *testing.T) {
		retriever := &mockRetriever{}
		server, err := NewServer(&Ports{Retriever: retriever})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "hello"})

		require.NoError(t, err)
		assert.Equal(t, 0, retriever.lastTopK)
		assert.Empty(t, output.Context)
		assert.NotNil(t, output.Passages)
	})

	t.Run("lookup failure degrades to empty context", func(t *testing.T) {
		retriever := &mockRetriever{err: errors.New("backend down")}
		server, err := NewServer(&Ports{Retriever: retriever})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "hello"})

		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.Empty(t, output.Context)
	})
}

func TestServer_handleAugment(t *testing.T) {
	ctx := context.Background()

	t.Run("appends ephemeral memory", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retriever: &mockRetriever{},
			Augmenter: &mockAugmenter{memory: "Relevant information from your memory: ..."},
		})
		require.NoError(t, err)

		_, output, err := server.handleAugment(ctx, nil, AugmentInput{
			Utterance: "Where do you live?",
			Messages: []MessageInput{
				{Role: "system", Content: "You are Buddy."},
				{Role: "user", Content: "Where do you live?"},
			},
		})

		require.NoError(t, err)
		assert.True(t, output.Injected)
		require.Len(t, output.Messages, 3)
		assert.Equal(t, MessageInput{Role: "system", Content: "Relevant information from your memory: ...", Ephemeral: true}, output.Messages[2])
	})

	t.Run("nothing injected", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Augmenter: &mockAugmenter{}})
		require.NoError(t, err)

		_, output, err := server.handleAugment(ctx, nil, AugmentInput{
			Utterance: "hi",
			Messages:  []MessageInput{{Role: "user", Content: "hi"}},
		})

		require.NoError(t, err)
		assert.False(t, output.Injected)
		assert.Len(t, output.Messages, 1)
	})

	t.Run("unknown role", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Augmenter: &mockAugmenter{}})
		require.NoError(t, err)

		_, _, err = server.handleAugment(ctx, nil, AugmentInput{
			Messages: []MessageInput{{Role: "narrator", Content: "x"}},
		})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestParseRole(t *testing.T) {
	for _, role := range []string{"system", "user", "assistant"} {
		r, err := parseRole(role)
		require.NoError(t, err)
		assert.Equal(t, domain.Role(role), r)
	}

	_, err := parseRole("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
