// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application and keeps the selection.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back leaves the results or clears the search.
	Back key.Binding

	// Focus switches between the search input and the results.
	Focus key.Binding

	// Up navigates up in a list.
	Up key.Binding

	// Down navigates down in a list.
	Down key.Binding

	// Toggle selects or deselects the highlighted user.
	Toggle key.Binding

	// ClearSelection empties the selection.
	ClearSelection key.Binding

	// Consent flips identity server consent.
	Consent key.Binding

	// Remember saves the highlighted user to the local store.
	Remember key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+s"),
			key.WithHelp("ctrl+s", "done"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "results"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		ClearSelection: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear selection"),
		),
		Consent: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "consent"),
		),
		Remember: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "remember"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the input mode.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Quit, k.Help}
}

// ResultsHelp returns keybindings for the results mode.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Up, k.Back, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.Back, k.Quit},
		{k.Up, k.Down, k.Toggle},
		{k.ClearSelection, k.Consent, k.Remember},
		{k.Help},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
