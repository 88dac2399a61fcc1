// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// ViewUpdated carries a new view state published by the coordinator.
type ViewUpdated struct {
	State domain.ViewState
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewPicker is the search input, results and selection view.
	ViewPicker ViewType = iota
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewPicker:
		return "picker"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ConsentChanged signals an identity consent update finished.
type ConsentChanged struct {
	Granted bool
	Err     error
}

// KnownUserAdded signals a user was saved to the local store.
type KnownUserAdded struct {
	Profile domain.UserProfile
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
