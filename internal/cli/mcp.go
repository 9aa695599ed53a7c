// internal/cli/mcp.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/agents/internal/mcpserver"
)

// serveMCP runs the MCP server over stdio; swapped in tests.
var serveMCP = func(ctx context.Context, s *mcpserver.Server) error {
	return s.RunStdio(ctx)
}

// mcpCmd serves every agent tool to MCP clients over stdin/stdout.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve agent tools over MCP stdio",
	Long:  `The 'mcp' command exposes the tools of every agent as an MCP server on stdin/stdout, for use by editors and other MCP clients.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, _, err := buildCatalog(GetConfig())
		if err != nil {
			return err
		}
		server, err := mcpserver.New(catalog, appVersion)
		if err != nil {
			return err
		}
		if err := serveMCP(commandContext(cmd), server); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
