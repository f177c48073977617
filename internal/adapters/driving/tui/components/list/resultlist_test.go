package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/buddy/internal/core/domain"
)

func samplePassages() []domain.Passage {
	return []domain.Passage{
		{ID: "chunk_1", Text: "Buddy is a golden retriever who lives in the Mission.", Page: 1, Distance: 0.112},
		{ID: "chunk_4", Text: "He loves Dolores Park on sunny afternoons.", Page: 2, Distance: 0.250},
		{ID: "chunk_9", Text: "November brings the Day of the Dead procession.", Page: 5, Distance: 0.471},
	}
}

func TestNewPassageList(t *testing.T) {
	l := NewPassageList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
	assert.True(t, l.IsEmpty())
	assert.Nil(t, l.SelectedPassage())
	assert.Nil(t, l.Init())
}

func TestPassageList_SetPassages(t *testing.T) {
	l := NewPassageList(nil)
	l.SetSelected(0)
	l.SetPassages(samplePassages())

	assert.Equal(t, 3, l.Count())
	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, "chunk_1", l.SelectedPassage().ID)
}

func TestPassageList_Navigation(t *testing.T) {
	l := NewPassageList(nil)
	l.SetPassages(samplePassages())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())
}

func TestPassageList_SetSelected_OutOfRange(t *testing.T) {
	l := NewPassageList(nil)
	l.SetPassages(samplePassages())

	l.SetSelected(99)
	assert.Equal(t, 0, l.Selected())

	l.SetSelected(-1)
	assert.Equal(t, 0, l.Selected())

	l.SetSelected(2)
	assert.Equal(t, 2, l.Selected())
}

func TestPassageList_View(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Contains(t, NewPassageList(nil).View(), "No passages")
	})

	t.Run("collapsed shows metadata and previews", func(t *testing.T) {
		l := NewPassageList(nil)
		l.SetDimensions(100, 30)
		l.SetPassages(samplePassages())

		view := l.View()

		assert.Contains(t, view, "Passages (3)")
		assert.Contains(t, view, "Rank #1 | Page 1 | Distance: 0.112")
		assert.Contains(t, view, "Rank #3 | Page 5 | Distance: 0.471")
		assert.Contains(t, view, "Dolores Park")
	})

	t.Run("expanded shows only the selected passage", func(t *testing.T) {
		l := NewPassageList(nil)
		l.SetDimensions(100, 30)
		l.SetPassages(samplePassages())
		l.MoveDown()
		l.ToggleExpanded()

		view := l.View()

		assert.True(t, l.Expanded())
		assert.Contains(t, view, "Rank #2")
		assert.Contains(t, view, "Dolores Park")
		assert.NotContains(t, view, "Rank #1")
	})

	t.Run("scrolls to keep selection visible", func(t *testing.T) {
		l := NewPassageList(nil)
		l.SetDimensions(100, 5)
		l.SetPassages(samplePassages())
		l.SetSelected(2)

		view := l.View()

		assert.Contains(t, view, "Rank #3")
		assert.NotContains(t, view, "Rank #1")
	})
}

func TestPassageList_ToggleExpanded_EmptyIsNoop(t *testing.T) {
	l := NewPassageList(nil)

	l.ToggleExpanded()

	assert.False(t, l.Expanded())
}
