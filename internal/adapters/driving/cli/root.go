// Package cli provides the cobra command tree of the usersearch binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/usersearch/internal/core/ports/driving"
	"github.com/custodia-labs/usersearch/internal/logger"
)

var version = "dev"

var verbose bool

// Services wired by main.
var (
	settingsService  driving.SettingsService
	knownUserService driving.KnownUserService
	newUserSearch    func() (driving.UserSearch, error)
)

// Services holds the core services the commands drive.
type Services struct {
	Settings   driving.SettingsService
	KnownUsers driving.KnownUserService

	// NewUserSearch creates a coordinator. Every command invocation owns
	// and closes its own instance.
	NewUserSearch func() (driving.UserSearch, error)
}

var rootCmd = &cobra.Command{
	Use:   "usersearch",
	Short: "Find users to invite",
	Long: `usersearch looks people up in three places at once: the users you
already share rooms with, the homeserver's user directory and, for email
addresses, the identity server.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	settingsService = s.Settings
	knownUserService = s.KnownUsers
	newUserSearch = s.NewUserSearch
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
