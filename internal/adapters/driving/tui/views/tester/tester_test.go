package tester

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/buddy/internal/core/domain"
)

// mockRetriever implements driving.RetrieverService for testing.
type mockRetriever struct {
	LookupFunc func(ctx context.Context, query string, topK int) (*domain.Retrieval, error)
	topK       int
	lastQuery  string
	lastTopK   int
}

func (m *mockRetriever) Lookup(ctx context.Context, query string, topK int) (*domain.Retrieval, error) {
	m.lastQuery = query
	m.lastTopK = topK
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, query, topK)
	}
	return &domain.Retrieval{Query: query, Passages: testPassages()}, nil
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, topK int) string {
	r, err := m.Lookup(ctx, query, topK)
	if err != nil {
		return ""
	}
	return r.Context()
}

func (m *mockRetriever) Collection() domain.CollectionInfo {
	return domain.CollectionInfo{Name: domain.DefaultCollectionName}
}

func (m *mockRetriever) TopK() int {
	return m.topK
}

func testPassages() []domain.Passage {
	return []domain.Passage{
		{ID: "chunk_2", Text: "Buddy is curious and warm.", Page: 1, Distance: 0.1},
		{ID: "chunk_7", Text: "He grew up near Valencia Street.", Page: 3, Distance: 0.3},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newReadyView(r *mockRetriever) *View {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), r)
	v.SetDimensions(120, 40)
	return v
}

// runLookup submits a line and feeds the resulting message back.
func runLookup(t *testing.T, v *View, line string) *View {
	t.Helper()
	v.SetInput(line)
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		query   string
		k       int
		wantErr bool
	}{
		{"plain", "What is Buddy's backstory?", "What is Buddy's backstory?", 3, false},
		{"trimmed", "  hello  ", "hello", 3, false},
		{"with k", "/k=5 Tell me about the Mission District", "Tell me about the Mission District", 5, false},
		{"k with extra spaces", "/k=2    events in November", "events in November", 2, false},
		{"non numeric", "/k=abc query", "", 0, true},
		{"missing query", "/k=5", "", 0, true},
		{"zero", "/k=0 query", "", 0, true},
		{"negative", "/k=-1 query", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, k, err := ParseQuery(tt.line, 3)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTopK)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.query, query)
			assert.Equal(t, tt.k, k)
		})
	}
}

func TestIsQuitCommand(t *testing.T) {
	for _, line := range []string{"quit", "exit", "q", " QUIT ", "Exit"} {
		assert.True(t, IsQuitCommand(line), line)
	}
	for _, line := range []string{"", "quitting", "q please", "/k=1 quit"} {
		assert.False(t, IsQuitCommand(line), line)
	}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockRetriever{topK: 7})

	require.NotNil(t, v)
	assert.Equal(t, 7, v.TopK())
	assert.True(t, v.InputFocused())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
}

func TestNewView_DefaultTopK(t *testing.T) {
	assert.Equal(t, domain.DefaultTopK, NewView(nil, nil, nil).TopK())
	assert.Equal(t, domain.DefaultTopK, NewView(nil, nil, &mockRetriever{}).TopK())
}

func TestView_Init_ShowsCollection(t *testing.T) {
	v := newReadyView(&mockRetriever{topK: 3})

	assert.NotNil(t, v.Init())
	assert.Contains(t, v.View(), "Connected to buddy_knowledge (default k=3)")
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)

	v, _ = v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, v.Ready())
	assert.Equal(t, 100, v.Width())
	assert.Equal(t, 30, v.Height())
}

func TestView_SubmitUsesDefaultTopK(t *testing.T) {
	r := &mockRetriever{topK: 3}
	v := newReadyView(r)

	v = runLookup(t, v, "What's Buddy's personality like?")

	assert.Equal(t, "What's Buddy's personality like?", r.lastQuery)
	assert.Equal(t, 3, r.lastTopK)
	assert.Equal(t, "What's Buddy's personality like?", v.Query())
	assert.Len(t, v.Passages(), 2)
	assert.False(t, v.InputFocused())
	assert.NoError(t, v.Err())
}

func TestView_SubmitWithTopKPrefix(t *testing.T) {
	r := &mockRetriever{topK: 3}
	v := newReadyView(r)

	v = runLookup(t, v, "/k=5 outdoor activities")

	assert.Equal(t, "outdoor activities", r.lastQuery)
	assert.Equal(t, 5, r.lastTopK)
	assert.Contains(t, v.View(), "2 of k=5 passages")
}

func TestView_SubmitInvalidPrefix(t *testing.T) {
	r := &mockRetriever{topK: 3}
	v := newReadyView(r)
	v.SetInput("/k=x query")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, v.Err(), ErrInvalidTopK)
	assert.True(t, v.InputFocused())
	assert.Empty(t, r.lastQuery)
	assert.Contains(t, v.View(), "Use: /k=5 your query here")
}

func TestView_SubmitEmptyIsNoop(t *testing.T) {
	v := newReadyView(&mockRetriever{})
	v.SetInput("   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_QuitWords(t *testing.T) {
	for _, word := range []string{"quit", "exit", "q"} {
		t.Run(word, func(t *testing.T) {
			v := newReadyView(&mockRetriever{})
			v.SetInput(word)

			_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, messages.Quit{}, cmd())
		})
	}
}

func TestView_LookupError(t *testing.T) {
	r := &mockRetriever{
		LookupFunc: func(context.Context, string, int) (*domain.Retrieval, error) {
			return nil, domain.ErrStorageUnavailable
		},
	}
	v := newReadyView(r)

	v = runLookup(t, v, "anything")

	assert.ErrorIs(t, v.Err(), domain.ErrStorageUnavailable)
	assert.Contains(t, v.View(), "Error")
}

func TestView_EmptyResults(t *testing.T) {
	r := &mockRetriever{
		LookupFunc: func(_ context.Context, q string, _ int) (*domain.Retrieval, error) {
			return &domain.Retrieval{Query: q}, nil
		},
	}
	v := newReadyView(r)

	v = runLookup(t, v, "nothing matches")

	assert.Empty(t, v.Passages())
	assert.Contains(t, v.View(), "No results found")
}

func TestView_NoRetriever(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)

	v = runLookup(t, v, "hello")

	assert.ErrorIs(t, v.Err(), ErrNoRetriever)
}

func TestView_ResultsNavigation(t *testing.T) {
	v := newReadyView(&mockRetriever{topK: 3})
	v = runLookup(t, v, "Buddy")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedIndex())

	v, _ = v.Update(key("k"))
	assert.Equal(t, 0, v.SelectedIndex())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, v.Expanded())
	assert.Contains(t, v.View(), "Buddy is curious and warm.")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.Expanded())
	assert.False(t, v.InputFocused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, v.InputFocused())
}

func TestView_NewQueryClearsInput(t *testing.T) {
	v := newReadyView(&mockRetriever{topK: 3})
	v = runLookup(t, v, "Buddy")

	v, _ = v.Update(key("n"))

	assert.True(t, v.InputFocused())
	assert.Equal(t, "", v.Input())
	assert.Len(t, v.Passages(), 2)
}

func TestView_EscFromInputReturnsToResults(t *testing.T) {
	v := newReadyView(&mockRetriever{topK: 3})
	v = runLookup(t, v, "Buddy")
	v, _ = v.Update(key("/"))
	require.True(t, v.InputFocused())

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.False(t, v.InputFocused())
}

func TestView_EscWithoutResultsQuits(t *testing.T) {
	v := newReadyView(&mockRetriever{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())
}

func TestView_HelpAndQuitFromResults(t *testing.T) {
	v := newReadyView(&mockRetriever{topK: 3})
	v = runLookup(t, v, "Buddy")

	_, cmd := v.Update(key("?"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())

	_, cmd = v.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())
}

func TestView_TypingInInputMode(t *testing.T) {
	v := newReadyView(&mockRetriever{})

	v, _ = v.Update(key("q"))

	assert.Equal(t, "q", v.Input())
	assert.True(t, v.InputFocused())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newReadyView(&mockRetriever{})

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
}

func TestView_Reset(t *testing.T) {
	v := newReadyView(&mockRetriever{topK: 3})
	v = runLookup(t, v, "Buddy")

	v.Reset()

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Passages())
	assert.Equal(t, "", v.Query())
	assert.NoError(t, v.Err())
}

func TestView_WithContext(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	var seen context.Context
	r := &mockRetriever{
		LookupFunc: func(ctx context.Context, q string, _ int) (*domain.Retrieval, error) {
			seen = ctx
			return &domain.Retrieval{Query: q}, nil
		},
	}
	v := newReadyView(r).WithContext(ctx)

	runLookup(t, v, "hi")

	require.NotNil(t, seen)
	assert.Equal(t, "v", seen.Value(ctxKey{}))
}
