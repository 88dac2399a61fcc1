package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/usersearch/internal/adapters/driving/mcp"
)

var versionJSON bool

type versionInfo struct {
	Version    string `json:"version"`
	MCPVersion string `json:"mcp_server_version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if versionJSON {
			return writeJSON(cmd.OutOrStdout(), versionInfo{
				Version:    version,
				MCPVersion: mcp.Version,
				GoVersion:  runtime.Version(),
				Platform:   runtime.GOOS + "/" + runtime.GOARCH,
			})
		}
		cmd.Printf("usersearch version %s\n", version)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output version details as JSON")
	rootCmd.AddCommand(versionCmd)
}
