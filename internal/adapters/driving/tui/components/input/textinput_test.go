package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/styles"
)

func TestNewQueryInput(t *testing.T) {
	in := NewQueryInput(styles.DefaultStyles())

	require.NotNil(t, in)
	assert.Equal(t, "", in.Value())
	assert.True(t, in.Focused())
	assert.Equal(t, 60, in.Width())
}

func TestNewQueryInput_NilStyles(t *testing.T) {
	in := NewQueryInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
}

func TestQueryInput_Init(t *testing.T) {
	assert.NotNil(t, NewQueryInput(nil).Init())
}

func TestQueryInput_TypesRunes(t *testing.T) {
	in := NewQueryInput(nil)

	for _, r := range "hi" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "hi", in.Value())
}

func TestQueryInput_View(t *testing.T) {
	view := NewQueryInput(nil).View()

	assert.Contains(t, view, "Query")
}

func TestQueryInput_FocusBlur(t *testing.T) {
	in := NewQueryInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQueryInput_SetWidth(t *testing.T) {
	in := NewQueryInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Equal(t, 88, in.textinput.Width)

	in.SetWidth(10)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestQueryInput_SetValueAndReset(t *testing.T) {
	in := NewQueryInput(nil)

	in.SetValue("/k=5 where is the Mission?")
	assert.Equal(t, "/k=5 where is the Mission?", in.Value())

	in.Reset()
	assert.Equal(t, "", in.Value())
}
