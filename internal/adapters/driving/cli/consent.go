package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var consentCmd = &cobra.Command{
	Use:   "consent [on|off]",
	Short: "Show or change identity server consent",
	Long: `Email addresses are only sent to the identity server after you agree to
share them. Without an argument the current state is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConsent,
}

func init() {
	rootCmd.AddCommand(consentCmd)
}

func runConsent(cmd *cobra.Command, args []string) error {
	if newUserSearch == nil {
		return errors.New("user search not configured")
	}

	search, err := newUserSearch()
	if err != nil {
		return fmt.Errorf("failed to start search: %w", err)
	}
	defer search.Close()

	if len(args) == 0 {
		cmd.Printf("Identity server lookups %s.\n", onOff(search.State().IdentityConsent))
		return nil
	}

	granted, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	if err := search.SetIdentityConsent(cmd.Context(), granted); err != nil {
		return fmt.Errorf("failed to set consent: %w", err)
	}
	cmd.Printf("Identity server lookups %s.\n", onOff(granted))
	return nil
}
