package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/usersearch/internal/core/services"
)

var (
	searchJSON    bool
	searchTimeout time.Duration
	searchExclude []string
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search users",
	Long: `Searches known users, the user directory and, when the term is an email
address, the identity server. Waits until every source has answered or the
timeout expires, then prints what is known.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().DurationVarP(&searchTimeout, "timeout", "t", 10*time.Second, "how long to wait for results")
	searchCmd.Flags().StringSliceVarP(&searchExclude, "exclude", "x", nil, "user ids to leave out of the results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if newUserSearch == nil {
		return errors.New("user search not configured")
	}

	search, err := newUserSearch()
	if err != nil {
		return fmt.Errorf("failed to start search: %w", err)
	}
	defer search.Close()

	term := args[0]
	search.SetExclusions(searchExclude)
	search.SetSearchTerm(term)

	ctx, cancel := context.WithTimeout(cmd.Context(), searchTimeout)
	defer cancel()

	view, err := services.AwaitSettled(ctx, search, term)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), toViewJSON(view))
	}

	printView(cmd.OutOrStdout(), view)
	if view.Pending {
		cmd.Println("(timed out waiting for some results)")
	}
	return nil
}
