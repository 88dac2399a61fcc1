package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/usersearch/internal/adapters/driving/tui"
)

var tuiJSON bool

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Pick users in a terminal UI",
	Long: `Launch the terminal user picker. The selection is printed when the
picker exits.

Controls:
  (type)      Search known users, the directory and email addresses
  tab/enter   Move to the results
  ↑/k, ↓/j    Navigate results
  enter/space Select or deselect a user
  x           Clear the selection
  c           Toggle identity server consent
  a           Remember the highlighted user
  esc         Back to the search input / clear the search
  f1          Help
  ctrl+s      Done`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&tuiJSON, "json", false, "print the selection as JSON")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if newUserSearch == nil {
		return errors.New("user search not configured")
	}

	search, err := newUserSearch()
	if err != nil {
		return fmt.Errorf("failed to start search: %w", err)
	}
	defer search.Close()

	app, err := tui.NewApp(&tui.Ports{Search: search, KnownUsers: knownUserService})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	view, err := app.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if tuiJSON {
		return writeJSON(cmd.OutOrStdout(), toViewJSON(view).Selected)
	}
	printSelection(cmd.OutOrStdout(), view)
	return nil
}
