// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/buddy/internal/core/domain"
)

// LookupCompleted carries a finished knowledge-base lookup back to the model.
type LookupCompleted struct {
	Query     string
	TopK      int
	Retrieval *domain.Retrieval
	Err       error
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewTester is the query input and passage list.
	ViewTester ViewType = iota
	// ViewHelp lists keybindings and query syntax.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewTester:
		return "tester"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
