// Package input provides the search field of the user picker.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/services"
)

// TermKind tells which sources can answer a term beyond the name search.
type TermKind int

const (
	// KindEmpty is a blank term.
	KindEmpty TermKind = iota
	// KindName is searched by name only.
	KindName
	// KindUserID also fetches the exact profile.
	KindUserID
	// KindEmail also asks the identity server.
	KindEmail
)

// Hint returns the label shown next to the field.
func (k TermKind) Hint() string {
	switch k {
	case KindUserID:
		return "user id"
	case KindEmail:
		return "email lookup"
	default:
		return ""
	}
}

// SearchInput is the search field. Update reports whether the term changed
// so the caller only publishes real edits.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewSearchInput creates a focused search field.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Name, user id or email address"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	return &SearchInput{textinput: ti, styles: s, width: 50}
}

// Init starts the cursor blink.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update feeds msg to the field. changed is true when the value differs
// from before the message.
func (s *SearchInput) Update(msg tea.Msg) (in *SearchInput, cmd tea.Cmd, changed bool) {
	before := s.textinput.Value()
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd, s.textinput.Value() != before
}

// View renders the label, the field and the kind hint.
func (s *SearchInput) View() string {
	parts := []string{
		s.styles.Title.Render("Search: "),
		s.styles.InputField.Render(s.textinput.View()),
	}
	if hint := s.Kind().Hint(); hint != "" {
		parts = append(parts, s.styles.Muted.Render(" "+hint))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...) //nolint:misspell // lipgloss constant
}

// Kind classifies the current term.
func (s *SearchInput) Kind() TermKind {
	term := strings.TrimSpace(s.textinput.Value())
	switch {
	case term == "":
		return KindEmpty
	case domain.IsUserID(term):
		return KindUserID
	case services.IsEmail(term):
		return KindEmail
	default:
		return KindName
	}
}

// Value returns the raw field contents.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue replaces the field contents.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Focus gives the field keyboard focus.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes keyboard focus.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused reports whether the field has keyboard focus.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth fits the field into width, leaving room for the label and hint.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.textinput.Width = max(width-24, 20)
}

// Width returns the width given to SetWidth.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the field.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
}
