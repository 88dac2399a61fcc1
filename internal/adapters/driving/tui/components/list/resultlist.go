// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// Section titles.
const (
	SectionKnown     = "Known users"
	SectionDirectory = "Directory"
	SectionEmail     = "Email"
)

// Entry is one selectable user in the list.
type Entry struct {
	Section string
	User    domain.UserProfile
}

// ResultList displays the three result slots of a view as sections of
// selectable users.
type ResultList struct {
	view     domain.ViewState
	entries  []Entry
	selected map[string]bool
	cursor   int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		selected: map[string]bool{},
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// SetView replaces the displayed view. The cursor stays on the highlighted
// user when it is still listed.
func (r *ResultList) SetView(view domain.ViewState) {
	var current string
	if e, ok := r.Current(); ok {
		current = e.User.ID
	}

	r.view = view
	r.entries = nil
	for _, u := range readyUsers(view.Known) {
		r.entries = append(r.entries, Entry{Section: SectionKnown, User: u})
	}
	for _, u := range readyUsers(view.Directory) {
		r.entries = append(r.entries, Entry{Section: SectionDirectory, User: u})
	}
	if view.Email.IsReady() && view.Email.Value != nil && view.Email.Value.User != nil {
		r.entries = append(r.entries, Entry{Section: SectionEmail, User: *view.Email.Value.User})
	}

	r.selected = make(map[string]bool, len(view.Selections))
	for _, id := range view.Selections {
		r.selected[id] = true
	}

	r.cursor = 0
	for i, e := range r.entries {
		if e.User.ID == current {
			r.cursor = i
			break
		}
	}
}

func readyUsers(slot domain.Slot[[]domain.UserProfile]) []domain.UserProfile {
	if !slot.IsReady() {
		return nil
	}
	return slot.Value
}

// View renders the result list.
func (r *ResultList) View() string {
	var lines []string
	cursorLine := 0

	addEntries := func(section string) {
		for i, e := range r.entries {
			if e.Section != section {
				continue
			}
			if i == r.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, r.renderEntry(i, e))
		}
	}

	userSection := func(title string, slot domain.Slot[[]domain.UserProfile]) {
		lines = append(lines, r.styles.Section.Render(title))
		switch {
		case slot.IsLoading():
			lines = append(lines, r.styles.Pending.Render("  Searching..."))
		case slot.IsFailed():
			lines = append(lines, r.styles.Error.Render(fmt.Sprintf("  Error: %v", slot.Err)))
		case slot.IsReady() && len(slot.Value) == 0:
			lines = append(lines, r.styles.Muted.Render("  No results"))
		case slot.IsReady():
			addEntries(title)
		default:
			lines = append(lines, r.styles.Muted.Render("  -"))
		}
		lines = append(lines, "")
	}

	userSection(SectionKnown, r.view.Known)
	userSection(SectionDirectory, r.view.Directory)

	email := r.view.Email
	switch {
	case email.IsLoading():
		lines = append(lines, r.styles.Section.Render(SectionEmail),
			r.styles.Pending.Render("  Looking up..."))
	case email.IsReady() && email.Value != nil && email.Value.User == nil:
		lines = append(lines, r.styles.Section.Render(SectionEmail),
			r.styles.Muted.Render(fmt.Sprintf("  %s has no linked account", email.Value.Email)))
	case email.IsReady() && email.Value != nil:
		lines = append(lines, r.styles.Section.Render(SectionEmail))
		addEntries(SectionEmail)
	case email.IsFailed():
		lines = append(lines, r.styles.Section.Render(SectionEmail),
			r.styles.Error.Render(fmt.Sprintf("  Error: %v", email.Err)))
	}

	return strings.Join(window(lines, cursorLine, r.height), "\n")
}

// window returns at most height lines keeping line focus visible.
func window(lines []string, focus, height int) []string {
	if height < 1 || len(lines) <= height {
		return lines
	}
	start := 0
	if focus >= height {
		start = focus - height + 1
	}
	return lines[start : start+height]
}

// renderEntry formats a single user line.
func (r *ResultList) renderEntry(index int, e Entry) string {
	check := "[ ]"
	if r.selected[e.User.ID] {
		check = r.styles.Checked.Render("[x]")
	}

	name := e.User.Name()
	maxNameLen := r.width - len(e.User.ID) - 12
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	if index == r.cursor {
		return "> " + check + " " + r.styles.Highlight.Render(name) + " " + r.styles.Muted.Render(e.User.ID)
	}
	line := "  " + check + " " + r.styles.Normal.Render(name)
	if e.User.DisplayName != "" {
		line += " " + r.styles.Muted.Render(e.User.ID)
	}
	return line
}

// Entries returns the selectable users in display order.
func (r *ResultList) Entries() []Entry {
	return r.entries
}

// Cursor returns the index of the highlighted entry.
func (r *ResultList) Cursor() int {
	return r.cursor
}

// Current returns the highlighted entry.
func (r *ResultList) Current() (Entry, bool) {
	if r.cursor < 0 || r.cursor >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[r.cursor], true
}

// MoveUp moves the cursor up.
func (r *ResultList) MoveUp() {
	if r.cursor > 0 {
		r.cursor--
	}
}

// MoveDown moves the cursor down.
func (r *ResultList) MoveDown() {
	if r.cursor < len(r.entries)-1 {
		r.cursor++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of selectable users.
func (r *ResultList) Count() int {
	return len(r.entries)
}

// IsEmpty returns whether the list has no selectable users.
func (r *ResultList) IsEmpty() bool {
	return len(r.entries) == 0
}
