package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	settingsDebounce       time.Duration
	settingsSampleInterval time.Duration
	settingsLimit          int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the homeserver, the identity server and search timing.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsHomeserverCmd = &cobra.Command{
	Use:   "homeserver [url]",
	Short: "Set the homeserver URL",
	Long:  `Set the homeserver used for the user directory and profiles.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsHomeserver,
}

var settingsIdentityCmd = &cobra.Command{
	Use:   "identity-server [url]",
	Short: "Set the identity server URL",
	Long:  `Set the identity server used for email lookups. Without a URL lookups are disabled.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsIdentity,
}

var settingsSelectionCmd = &cobra.Command{
	Use:   "single-selection [on|off]",
	Short: "Restrict the selection to one user",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSelection,
}

var settingsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Configure search timing",
	Long: `Configure how long the search waits after typing stops, how often the
identity server is sampled and how many directory results are requested.`,
	Args: cobra.NoArgs,
	RunE: runSettingsSearch,
}

func init() {
	settingsSearchCmd.Flags().DurationVar(&settingsDebounce, "debounce", 0, "quiet period before searching")
	settingsSearchCmd.Flags().DurationVar(&settingsSampleInterval, "sample-interval", 0, "identity lookup interval")
	settingsSearchCmd.Flags().IntVar(&settingsLimit, "limit", 0, "maximum directory results")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsHomeserverCmd)
	settingsCmd.AddCommand(settingsIdentityCmd)
	settingsCmd.AddCommand(settingsSelectionCmd)
	settingsCmd.AddCommand(settingsSearchCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Debounce: %s\n", settings.Search.Debounce)
	cmd.Printf("  Identity sample interval: %s\n", settings.Search.SampleInterval)
	cmd.Printf("  Directory limit: %d\n", settings.Search.DirectoryLimit)
	cmd.Printf("  Single selection: %s\n", yesNo(settings.Search.SingleSelection))
	cmd.Println()

	cmd.Println("[Directory]")
	cmd.Printf("  Homeserver: %s\n", valueOrUnset(settings.Directory.BaseURL))
	cmd.Println()

	cmd.Println("[Identity]")
	cmd.Printf("  Server: %s\n", valueOrUnset(settings.Identity.ServerURL))
	cmd.Printf("  Consent: %s\n", yesNo(settings.Identity.Consent))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data directory: %s\n", valueOrUnset(settings.Storage.DataDir))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'usersearch settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Usersearch Setup Wizard")
	cmd.Println("=======================")
	cmd.Println()

	cmd.Printf("Homeserver URL [%s]: ", settings.Directory.BaseURL)
	if input := readLine(reader); input != "" {
		settings.Directory.BaseURL = input
	}

	cmd.Printf("Identity server URL, '-' for none [%s]: ", settings.Identity.ServerURL)
	switch input := readLine(reader); input {
	case "":
	case "-":
		settings.Identity.ServerURL = ""
	default:
		settings.Identity.ServerURL = input
	}

	cmd.Printf("Directory result limit [%d]: ", settings.Search.DirectoryLimit)
	settings.Search.DirectoryLimit = parseChoice(readLine(reader), 1000, settings.Search.DirectoryLimit)

	cmd.Println()
	cmd.Println("Selection mode:")
	cmd.Println("  [1] Multiple users")
	cmd.Println("  [2] Single user")
	defaultMode := 1
	if settings.Search.SingleSelection {
		defaultMode = 2
	}
	cmd.Printf("Select mode [%d]: ", defaultMode)
	settings.Search.SingleSelection = parseChoice(readLine(reader), 2, defaultMode) == 2

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println()
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	cmd.Println("Settings saved.")
	return nil
}

func runSettingsHomeserver(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetDirectoryURL(args[0]); err != nil {
		return fmt.Errorf("failed to set homeserver: %w", err)
	}
	cmd.Printf("Homeserver set to %s\n", args[0])
	return nil
}

func runSettingsIdentity(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	url := ""
	if len(args) == 1 {
		url = args[0]
	}
	if err := settingsService.SetIdentityServer(url); err != nil {
		return fmt.Errorf("failed to set identity server: %w", err)
	}
	if url == "" {
		cmd.Println("Identity server lookups disabled.")
	} else {
		cmd.Printf("Identity server set to %s\n", url)
	}
	return nil
}

func runSettingsSelection(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	single, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	if err := settingsService.SetSingleSelection(single); err != nil {
		return fmt.Errorf("failed to set selection mode: %w", err)
	}
	cmd.Printf("Single selection %s.\n", onOff(single))
	return nil
}

func runSettingsSearch(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if settingsDebounce > 0 {
		settings.Search.Debounce = settingsDebounce
	}
	if settingsSampleInterval > 0 {
		settings.Search.SampleInterval = settingsSampleInterval
	}
	if settingsLimit > 0 {
		settings.Search.DirectoryLimit = settingsLimit
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Search: debounce %s, sample interval %s, limit %d\n",
		settings.Search.Debounce, settings.Search.SampleInterval, settings.Search.DirectoryLimit)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
