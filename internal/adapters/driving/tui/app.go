package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui/views/picker"
	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	// pickerView is the search and selection view.
	pickerView *picker.View

	// updates carries the newest view state from the coordinator's
	// subscriber goroutine to the update loop.
	updates     chan domain.ViewState
	unsubscribe func()

	// currentView tracks which view is active.
	currentView messages.ViewType

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	pickerView := picker.NewView(s, km, ports.Search, ports.KnownUsers)
	pickerView.SetState(ports.Search.State())

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		help:        help.New(),
		pickerView:  pickerView,
		updates:     make(chan domain.ViewState, 1),
		currentView: messages.ViewPicker,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.pickerView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It subscribes to the coordinator and starts the input cursor.
func (a *App) Init() tea.Cmd {
	if a.unsubscribe == nil {
		a.unsubscribe = a.ports.Search.Subscribe(a.publish)
	}
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("usersearch"),
		a.pickerView.Init(),
		a.waitForView(),
	)
}

// publish keeps only the newest view state for the update loop.
func (a *App) publish(view domain.ViewState) {
	select {
	case <-a.updates:
	default:
	}
	a.updates <- view
}

// waitForView delivers the next view state as a message.
func (a *App) waitForView() tea.Cmd {
	updates, ctx := a.updates, a.ctx
	return func() tea.Msg {
		select {
		case view := <-updates:
			return messages.ViewUpdated{State: view}
		case <-ctx.Done():
			return messages.Quit{}
		}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			// Any key leaves help
			a.currentView = messages.ViewPicker
			return a, nil
		}
		a.pickerView, cmd = a.pickerView.Update(msg)
		return a, cmd

	case messages.ViewUpdated:
		a.pickerView, cmd = a.pickerView.Update(msg)
		return a, tea.Batch(cmd, a.waitForView())

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	a.pickerView, cmd = a.pickerView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.pickerView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Muted.Render("Type to search; results from the known users, the directory and the\n"+
			"identity server appear as they arrive. Press any key to go back.")
}

// Run starts the TUI application and returns the final view state.
func (a *App) Run() (domain.ViewState, error) {
	defer a.Close()

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return a.ports.Search.State(), err
}

// Close releases the coordinator subscription.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Picker returns the picker view.
func (a *App) Picker() *picker.View {
	return a.pickerView
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.pickerView.SetDimensions(width, height)
}
