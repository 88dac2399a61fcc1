package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	usersAddName string
	usersJSON    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage known users",
	Long:  `List, add and remove the users searched locally before the directory.`,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known users",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add [user-id]",
	Short: "Add a known user",
	Long: `Adds a user to the local store. Without --name the profile is fetched
from the homeserver.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersAdd,
}

var usersRemoveCmd = &cobra.Command{
	Use:   "remove [user-id]",
	Short: "Remove a known user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersRemove,
}

func init() {
	usersListCmd.Flags().BoolVar(&usersJSON, "json", false, "output users as JSON")
	usersAddCmd.Flags().StringVar(&usersAddName, "name", "", "display name")
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersRemoveCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	if knownUserService == nil {
		return errors.New("known user service not configured")
	}

	users, err := knownUserService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if usersJSON {
		return writeJSON(cmd.OutOrStdout(), users)
	}
	if len(users) == 0 {
		cmd.Println("No known users.")
		return nil
	}
	for _, u := range users {
		if u.DisplayName != "" {
			cmd.Printf("  %s (%s)\n", u.DisplayName, u.ID)
		} else {
			cmd.Printf("  %s\n", u.ID)
		}
	}
	return nil
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	if knownUserService == nil {
		return errors.New("known user service not configured")
	}

	profile, err := knownUserService.Add(cmd.Context(), args[0], usersAddName)
	if err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	cmd.Printf("Added %s.\n", profile.Name())
	return nil
}

func runUsersRemove(cmd *cobra.Command, args []string) error {
	if knownUserService == nil {
		return errors.New("known user service not configured")
	}

	if err := knownUserService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	cmd.Printf("Removed %s.\n", args[0])
	return nil
}
