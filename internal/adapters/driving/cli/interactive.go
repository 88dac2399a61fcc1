package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
	"github.com/custodia-labs/usersearch/internal/core/services"
)

var interactiveTimeout time.Duration

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Search and pick users interactively",
	Long: `Starts an interactive session. Type a search term to search; the selection
is kept across searches.

Commands:
  /toggle N        select or deselect result N
  /remove ID       deselect a user id
  /unselect        clear the selection
  /clear           clear the search
  /selected        show the selection
  /consent on|off  allow or forbid identity server lookups
  /done            print the selection and exit`,
	Args: cobra.NoArgs,
	RunE: runInteractive,
}

func init() {
	interactiveCmd.Flags().DurationVarP(&interactiveTimeout, "timeout", "t", 10*time.Second,
		"how long to wait for results of each search")
	rootCmd.AddCommand(interactiveCmd)
}

// session is one interactive run over a coordinator.
type session struct {
	search  driving.UserSearch
	out     io.Writer
	timeout time.Duration
	last    listing
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	if newUserSearch == nil {
		return errors.New("user search not configured")
	}

	search, err := newUserSearch()
	if err != nil {
		return fmt.Errorf("failed to start search: %w", err)
	}
	defer search.Close()

	s := &session{search: search, out: cmd.OutOrStdout(), timeout: interactiveTimeout}
	in := cmd.InOrStdin()
	prompt := isTerminal(in)

	reader := bufio.NewReader(in)
	for {
		if prompt {
			fmt.Fprint(s.out, "> ")
		}
		line, readErr := reader.ReadString('\n')
		line = strings.TrimSpace(line)

		if line != "" {
			done, err := s.handle(cmd.Context(), line)
			if err != nil {
				fmt.Fprintf(s.out, "Error: %v\n", err)
			}
			if done {
				break
			}
		}
		if readErr != nil {
			break
		}
	}

	printSelection(s.out, search.State())
	return nil
}

// handle runs one input line and reports whether the session ends.
func (s *session) handle(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		return false, s.runSearch(ctx, line)
	}

	command, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch command {
	case "done", "quit", "q":
		return true, nil
	case "toggle", "t":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("expected a result number, got %q", arg)
		}
		user, ok := s.last.at(n)
		if !ok {
			return false, fmt.Errorf("no result %d", n)
		}
		s.search.ToggleSelection(user.ID)
		printSelection(s.out, s.search.State())
	case "remove":
		if arg == "" {
			return false, errors.New("expected a user id")
		}
		s.search.RemoveSelection(arg)
		printSelection(s.out, s.search.State())
	case "unselect":
		s.search.ClearSelection()
		printSelection(s.out, s.search.State())
	case "clear":
		s.search.ClearSearch()
		s.last = listing{}
	case "selected":
		printSelection(s.out, s.search.State())
	case "consent":
		granted, err := parseOnOff(arg)
		if err != nil {
			return false, err
		}
		if err := s.search.SetIdentityConsent(ctx, granted); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Identity server lookups %s.\n", onOff(granted))
	default:
		return false, fmt.Errorf("unknown command /%s", command)
	}
	return false, nil
}

func (s *session) runSearch(ctx context.Context, term string) error {
	s.search.SetSearchTerm(term)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	view, err := services.AwaitSettled(ctx, s.search, term)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.last = printView(s.out, view)
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func parseOnOff(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", arg)
	}
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
