// Package tester provides the interactive retrieval tester view for the TUI.
package tester

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/buddy/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/buddy/internal/core/domain"
	"github.com/custodia-labs/buddy/internal/core/ports/driving"
)

const topKPrefix = "/k="

// ParseQuery splits an optional "/k=N " prefix from a typed line.
// Lines without the prefix use defaultK.
func ParseQuery(line string, defaultK int) (string, int, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, topKPrefix) {
		return line, defaultK, nil
	}

	head, rest, _ := strings.Cut(line, " ")
	k, err := strconv.Atoi(strings.TrimPrefix(head, topKPrefix))
	if err != nil || k < 1 {
		return "", 0, ErrInvalidTopK
	}

	query := strings.TrimSpace(rest)
	if query == "" {
		return "", 0, ErrInvalidTopK
	}
	return query, k, nil
}

// IsQuitCommand reports whether a typed line asks to leave the tester.
func IsQuitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// View represents the tester view with input, passage list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.PassageList
	statusbar *status.Bar

	retriever driving.RetrieverService
	ctx       context.Context

	width      int
	height     int
	ready      bool
	err        error
	query      string
	topK       int
	focusInput bool // true while typing, false while browsing passages
}

// NewView creates a new tester view.
func NewView(s *styles.Styles, km *keymap.KeyMap, retriever driving.RetrieverService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	topK := domain.DefaultTopK
	if retriever != nil && retriever.TopK() > 0 {
		topK = retriever.TopK()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewPassageList(s),
		statusbar:  status.NewBar(s, km),
		retriever:  retriever,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		topK:       topK,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	if v.retriever != nil {
		info := v.retriever.Collection()
		v.statusbar.SetMessage(fmt.Sprintf("Connected to %s (default k=%d)", info.Name, v.topK))
	}
	return v.input.Init()
}

// Update handles messages for the tester view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.LookupCompleted:
		v.handleLookupCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}
	return v.handleResultsKey(msg)
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		if v.list.IsEmpty() {
			return v, quitCmd
		}
		v.browse()
		v.statusbar.SetState(status.StateResults)
		return v, nil

	case tea.KeyEnter:
		return v.submit(v.input.Value())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		if v.list.Expanded() {
			v.list.ToggleExpanded()
			return v, nil
		}
		v.editQuery()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Expand):
		v.list.ToggleExpanded()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.NewQuery):
		v.editQuery()
		v.input.Reset()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Help):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	case keymap.Matches(msg.String(), v.keymap.Quit):
		return v, quitCmd
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

// submit handles one typed line.
func (v *View) submit(line string) (*View, tea.Cmd) {
	line = strings.TrimSpace(line)
	if line == "" {
		return v, nil
	}
	if IsQuitCommand(line) {
		return v, quitCmd
	}

	query, k, err := ParseQuery(line, v.topK)
	if err != nil {
		v.setError(err)
		return v, nil
	}

	v.err = nil
	v.query = query
	v.statusbar.SetState(status.StateSearching)
	v.statusbar.SetMessage("")
	return v, v.performLookup(query, k)
}

// performLookup runs a lookup off the update loop.
func (v *View) performLookup(query string, k int) tea.Cmd {
	retriever := v.retriever
	ctx := v.ctx
	return func() tea.Msg {
		if retriever == nil {
			return messages.ErrorOccurred{Err: ErrNoRetriever}
		}
		retrieval, err := retriever.Lookup(ctx, query, k)
		return messages.LookupCompleted{Query: query, TopK: k, Retrieval: retrieval, Err: err}
	}
}

func (v *View) handleLookupCompleted(msg messages.LookupCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	var passages []domain.Passage
	if msg.Retrieval != nil {
		passages = msg.Retrieval.Passages
	}
	v.list.SetPassages(passages)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResults(len(passages), msg.TopK)
	v.browse()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) browse() {
	v.focusInput = false
	v.input.Blur()
}

func (v *View) editQuery() {
	v.focusInput = true
	v.input.Focus()
	v.statusbar.SetState(status.StateReady)
}

func quitCmd() tea.Msg {
	return messages.Quit{}
}

// View renders the tester view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections,
		v.styles.Title.Render("Buddy knowledge base"),
		v.styles.Subtitle.Render("Type a question, /k=N to change the result count, quit to leave"),
		"",
		v.input.View(),
		"",
	)

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.query != "" {
		sections = append(sections, v.styles.Muted.Render("Results for: "+v.query))
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input and status
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the last submitted query.
func (v *View) Query() string {
	return v.query
}

// TopK returns the default result count.
func (v *View) TopK() int {
	return v.topK
}

// Input returns the text currently typed.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput replaces the typed text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}

// Passages returns the passages of the last lookup.
func (v *View) Passages() []domain.Passage {
	return v.list.Passages()
}

// SelectedIndex returns the index of the selected passage.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Expanded reports whether the selected passage is shown in full.
func (v *View) Expanded() bool {
	return v.list.Expanded()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.editQuery()
	v.input.Reset()
	v.list.SetPassages(nil)
	v.query = ""
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
