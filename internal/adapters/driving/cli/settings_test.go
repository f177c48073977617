package cli

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driven"
	"github.com/custodia-labs/buddy/internal/core/services"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsCmd_Subcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range settingsCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"show", "set", "embedding"}, names)
}

func TestSettingsShow_Defaults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "[Storage]")
	assert.Contains(t, out, "Collection: buddy_knowledge")
	assert.Contains(t, out, "Chunk size: 800")
	assert.Contains(t, out, "Overlap: 100")
	assert.Contains(t, out, "Top K: 3")
	assert.Contains(t, out, "Timeout: 5s")
	assert.Contains(t, out, "Hashing (built-in, offline)")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_ListsCollections(t *testing.T) {
	env := setupTestServices(t)

	out, err := execute(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Built collections: none (run 'buddy index')")

	indexTestSource(t, env)

	out, err = execute(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Built collections:\n    buddy_knowledge (hashing-fnv1a, 512 dims)")
}

func TestSettingsShow_StoreNotBuilt(t *testing.T) {
	setupTestServices(t)
	openStore = func(string, bool) (driven.CollectionStore, error) {
		return nil, fmt.Errorf("%w: no database", domain.ErrCollectionNotFound)
	}

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Built collections: none")
}

func TestSettingsShow_MasksAPIKey(t *testing.T) {
	setupTestServices(t)
	require.NoError(t, settingsService.SetEmbeddingProvider(
		domain.EmbeddingProviderOpenAI, "", "sk-1234567890abcdef"))

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "1234567890")
}

func TestSettingsShow_WarnsOnInvalidConfig(t *testing.T) {
	setupTestServices(t)
	require.NoError(t, settingsService.Set("indexer.overlap", "900"))

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "indexer.overlap")
}

func TestSettingsSet(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings", "set", "retriever.top_k", "6")

	require.NoError(t, err)
	assert.Contains(t, out, "retriever.top_k updated")
	s, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, 6, s.Retriever.TopK)
}

func TestSettingsSet_Errors(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "settings", "set", "retriever.top_k", "many")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "settings", "set", "nope.key", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "settings", "set", "retriever.top_k")
	assert.Error(t, err)
}

func TestSettingsEmbedding_SelectsHashing(t *testing.T) {
	setupTestServices(t)
	rootCmd.SetIn(strings.NewReader("1\n\n"))

	out, err := execute(t, "settings", "embedding")

	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Contains(t, out, "buddy index --force")
	s, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderHashing, s.Embedding.Provider)
	assert.Equal(t, "hashing-fnv1a", s.Embedding.Model)
}

func TestConfigureEmbeddingProvider_OpenAIKeyFromReader(t *testing.T) {
	env := setupTestServices(t)
	settingsService = services.NewSettingsService(env.config, nil)
	cmd := &cobra.Command{}
	cmd.SetOut(new(strings.Builder))
	reader := bufio.NewReader(strings.NewReader("3\ntext-embedding-3-large\nsk-test-abcdefgh\n"))

	require.NoError(t, configureEmbeddingProvider(cmd, reader))

	s, err := settingsService.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", s.Embedding.Model)
	assert.Equal(t, "sk-test-abcdefgh", s.Embedding.APIKey)
}
