package commands

import (
	"jira-stage-metrics/internal/mcp"
	"jira-stage-metrics/internal/store"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	server := mcp.NewServer(cfg, store.NewRecordStore(), Version)
	return server.Serve(cmd.Context())
}
