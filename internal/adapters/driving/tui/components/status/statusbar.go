// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/styles"
)

// State represents the current picker state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
)

// Bar displays the search state, the selection size and keybinding hints.
type Bar struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	state         State
	message       string
	selectedCount int
	consent       bool
	width         int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, the selection size and the consent flag.
func (s *Bar) renderLeft() string {
	var state string
	switch s.state {
	case StateSearching:
		state = s.styles.Pending.Render("Searching...")
	case StateError:
		if s.message != "" {
			state = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			state = s.styles.Error.Render("Error")
		}
	case StateReady, StateResults:
		if s.message != "" {
			state = s.styles.Normal.Render(s.message)
		} else {
			state = s.styles.Muted.Render("Ready")
		}
	}

	consent := "email lookups off"
	if s.consent {
		consent = "email lookups on"
	}
	return fmt.Sprintf("%s %s %s",
		state,
		s.styles.Normal.Render(fmt.Sprintf("| %d selected", s.selectedCount)),
		s.styles.Muted.Render("| "+consent),
	)
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateResults {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetSelectedCount sets the number of selected users.
func (s *Bar) SetSelectedCount(count int) {
	s.selectedCount = count
}

// SelectedCount returns the number of selected users.
func (s *Bar) SelectedCount() int {
	return s.selectedCount
}

// SetConsent sets the identity consent indicator.
func (s *Bar) SetConsent(granted bool) {
	s.consent = granted
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
