// Package picker provides the user picker view for the TUI.
package picker

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/usersearch/internal/core/domain"
	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
)

// View is the picker: a search input, the result sections, the selection
// and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar

	search driving.UserSearch
	known  driving.KnownUserService
	ctx    context.Context

	state      domain.ViewState
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a term, false = moving through results
}

// NewView creates a new picker view. known may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	search driving.UserSearch,
	known driving.KnownUserService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewSearchInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		search:     search,
		known:      known,
		ctx:        context.Background(),
		width:      80,
		height:     24,
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
	return v.input.Init()
}

// Update handles messages for the picker view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ViewUpdated:
		v.SetState(msg.State)
		return v, nil

	case messages.ConsentChanged:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		if msg.Granted {
			v.statusbar.SetMessage("Email lookups enabled")
		} else {
			v.statusbar.SetMessage("Email lookups disabled")
		}
		return v, nil

	case messages.KnownUserAdded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.statusbar.SetMessage("Remembered " + msg.Profile.Name())
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd, _ = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.Help) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewHelp}
		}
	}
	if v.focusInput {
		return v.handleInputKey(msg)
	}
	return v.handleResultsKey(msg)
}

// handleInputKey handles keys while typing a term.
func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		if v.input.Value() != "" {
			v.input.Reset()
			v.search.ClearSearch()
		}
		return v, nil
	case tea.KeyTab, tea.KeyDown, tea.KeyEnter:
		if !v.list.IsEmpty() {
			v.focusResults()
		}
		return v, nil
	}

	var cmd tea.Cmd
	var changed bool
	v.input, cmd, changed = v.input.Update(msg)
	if changed {
		v.err = nil
		v.search.SetSearchTerm(v.input.Value())
	}
	return v, cmd
}

// handleResultsKey handles keys while moving through results.
func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back), keymap.Matches(keyStr, v.keymap.Focus):
		v.focusSearch()
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Up):
		v.list.MoveUp()
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Down):
		v.list.MoveDown()
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Toggle):
		if e, ok := v.list.Current(); ok {
			v.search.ToggleSelection(e.User.ID)
		}
		return v, nil
	case keymap.Matches(keyStr, v.keymap.ClearSelection):
		v.search.ClearSelection()
		return v, nil
	case keymap.Matches(keyStr, v.keymap.Consent):
		return v, v.setConsent(!v.state.IdentityConsent)
	case keymap.Matches(keyStr, v.keymap.Remember):
		return v, v.remember()
	}
	return v, nil
}

func (v *View) focusResults() {
	v.focusInput = false
	v.input.Blur()
	v.refreshStatus()
}

func (v *View) focusSearch() {
	v.focusInput = true
	v.input.Focus()
	v.refreshStatus()
}

// setConsent records identity consent off the update loop.
func (v *View) setConsent(granted bool) tea.Cmd {
	search, ctx := v.search, v.ctx
	return func() tea.Msg {
		err := search.SetIdentityConsent(ctx, granted)
		return messages.ConsentChanged{Granted: granted, Err: err}
	}
}

// remember saves the highlighted user to the local store.
func (v *View) remember() tea.Cmd {
	e, ok := v.list.Current()
	if !ok {
		return nil
	}
	if v.known == nil {
		v.statusbar.SetMessage("Known users not available")
		return nil
	}
	known, ctx := v.known, v.ctx
	return func() tea.Msg {
		profile, err := known.Add(ctx, e.User.ID, e.User.DisplayName)
		return messages.KnownUserAdded{Profile: profile, Err: err}
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// SetState shows a view state published by the coordinator.
func (v *View) SetState(state domain.ViewState) {
	v.state = state
	v.list.SetView(state)
	if v.list.IsEmpty() && !v.focusInput {
		v.focusSearch()
	}
	v.statusbar.SetSelectedCount(len(state.Selections))
	v.statusbar.SetConsent(state.IdentityConsent)
	v.refreshStatus()
}

func (v *View) refreshStatus() {
	if v.err != nil {
		return
	}
	switch {
	case v.state.Pending:
		v.statusbar.SetState(status.StateSearching)
	case v.focusInput:
		v.statusbar.SetState(status.StateReady)
	default:
		v.statusbar.SetState(status.StateResults)
	}
}

// View renders the picker.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Select users"), "")
	sections = append(sections, v.input.View(), "")

	if chips := v.renderSelection(); chips != "" {
		sections = append(sections, chips, "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSelection renders the selected users as chips.
func (v *View) renderSelection() string {
	if len(v.state.SelectedProfiles) == 0 {
		return ""
	}
	chips := make([]string, 0, len(v.state.SelectedProfiles))
	for _, u := range v.state.SelectedProfiles {
		chips = append(chips, v.styles.Chip.Render(u.Name()))
	}
	return v.styles.Muted.Render(fmt.Sprintf("Selected (%d): ", len(chips))) + strings.Join(chips, " ")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // header, input, selection, status
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

// Term returns the text in the search input.
func (v *View) Term() string {
	return v.input.Value()
}

// State returns the last view state shown.
func (v *View) State() domain.ViewState {
	return v.state
}

// Entries returns the selectable users.
func (v *View) Entries() []list.Entry {
	return v.list.Entries()
}

// Cursor returns the index of the highlighted user.
func (v *View) Cursor() int {
	return v.list.Cursor()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// ClearError clears the current error.
func (v *View) ClearError() {
	v.err = nil
	v.statusbar.Clear()
	v.refreshStatus()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
