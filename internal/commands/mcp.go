package commands

import (
	"github.com/spf13/cobra"

	"github.com/tdq/tdq/internal/appctx"
	"github.com/tdq/tdq/internal/mcp"
	"github.com/tdq/tdq/internal/output"
)

// NewMCPCmd creates the mcp command group.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server (Model Context Protocol)",
		Long: `MCP server for AI integration.

The MCP server exposes activity aggregation, task health analysis, and name
resolution as tools for AI assistants.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.ErrUsageHint("Action required", "Run: tdq mcp serve")
		},
	}

	cmd.AddCommand(newMCPServeCmd())

	return cmd
}

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			srv := mcp.New(app.Client, app.Config)
			return srv.ServeStdio()
		},
	}
}
