package cmd

import (
	"github.com/chris-regnier/focusflow/internal/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Run MCP server on stdio",
		Long: `Starts a Model Context Protocol (MCP) server that exposes focusflow tools
over stdio transport. This allows MCP clients like Claude Desktop to read
and manage your tasks, notes and focus history.

Available tools:
  - list_tasks: List tasks filtered by status, project or tag
  - search_notes: Fuzzy search over note titles, tags and content
  - focus_summary: Focus minutes, streak and task progress
  - create_task: Create a task
  - complete_task: Mark a task as done

Example usage in Claude Desktop config:
  {
    "mcpServers": {
      "focusflow": {
        "command": "/path/to/focusflow",
        "args": ["mcp-serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := mcptools.CreateMCPServer(store, appConfig.DataDir)

			// stdout carries the protocol; logs go to the log file only.
			logger.Info("starting MCP server",
				zap.String("transport", "stdio"),
				zap.String("backend", appConfig.Storage),
				zap.String("data_dir", appConfig.DataDir))

			// Blocks until the client closes the transport.
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
