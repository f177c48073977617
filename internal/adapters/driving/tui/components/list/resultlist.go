// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/buddy/internal/core/domain"
)

// linesPerPassage is the height of one collapsed entry plus its spacer.
const linesPerPassage = 3

// PassageList displays ranked passages in a navigable list.
type PassageList struct {
	passages []domain.Passage
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewPassageList creates an empty passage list.
func NewPassageList(s *styles.Styles) *PassageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PassageList{
		styles: s,
		width:  80,
		height: 12,
	}
}

// Init initialises the list.
func (p *PassageList) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys.
func (p *PassageList) Update(msg tea.Msg) (*PassageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			p.MoveUp()
		case "down", "j":
			p.MoveDown()
		}
	}
	return p, nil
}

// View renders the list, with the selected passage in full when expanded.
func (p *PassageList) View() string {
	if len(p.passages) == 0 {
		return p.styles.Muted.Render("No passages")
	}

	lines := []string{
		p.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(p.passages))),
		"",
	}

	if p.expanded {
		lines = append(lines, p.renderMeta(p.selected, true))
		lines = append(lines, p.styles.Passage.Width(max(p.width-4, 20)).Render(p.passages[p.selected].Text))
		return strings.Join(lines, "\n")
	}

	visible := max((p.height-2)/linesPerPassage, 1)
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := min(start+visible, len(p.passages))

	for i := start; i < end; i++ {
		lines = append(lines, p.renderMeta(i, i == p.selected))
		lines = append(lines, p.styles.Muted.Render("    "+domain.Preview(p.passages[i].Text, max(p.width-11, 17))))
	}

	return strings.Join(lines, "\n")
}

func (p *PassageList) renderMeta(index int, selected bool) string {
	passage := p.passages[index]
	meta := fmt.Sprintf("Rank #%d | Page %d | Distance: %.3f", index+1, passage.Page, passage.Distance)
	if selected {
		return p.styles.Selected.Render("> " + meta)
	}
	return "  " + p.styles.Meta.Render(meta)
}

// SetPassages replaces the list contents and resets the selection.
func (p *PassageList) SetPassages(passages []domain.Passage) {
	p.passages = passages
	p.selected = 0
	p.expanded = false
}

// Passages returns the current passages.
func (p *PassageList) Passages() []domain.Passage {
	return p.passages
}

// Selected returns the index of the selected passage.
func (p *PassageList) Selected() int {
	return p.selected
}

// SetSelected sets the selected index when it is in range.
func (p *PassageList) SetSelected(index int) {
	if index >= 0 && index < len(p.passages) {
		p.selected = index
	}
}

// SelectedPassage returns the selected passage, or nil if the list is empty.
func (p *PassageList) SelectedPassage() *domain.Passage {
	if len(p.passages) == 0 {
		return nil
	}
	return &p.passages[p.selected]
}

// ToggleExpanded switches between the list and the full selected passage.
func (p *PassageList) ToggleExpanded() {
	if len(p.passages) > 0 {
		p.expanded = !p.expanded
	}
}

// Expanded reports whether the selected passage is shown in full.
func (p *PassageList) Expanded() bool {
	return p.expanded
}

// MoveUp moves selection up.
func (p *PassageList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *PassageList) MoveDown() {
	if p.selected < len(p.passages)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *PassageList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of passages.
func (p *PassageList) Count() int {
	return len(p.passages)
}

// IsEmpty returns whether the list is empty.
func (p *PassageList) IsEmpty() bool {
	return len(p.passages) == 0
}
