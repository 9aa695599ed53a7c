// internal/cli/tools.go
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/agents/internal/agents"
	"github.com/mwiater/agents/internal/tools"
)

// toolsCmd groups commands that work with agent tools directly.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Run agent tools without a model",
}

var toolsCallCmd = &cobra.Command{
	Use:   "call <name> [json-args]",
	Short: "Execute a tool locally with JSON arguments",
	Long:  `The 'call' subcommand runs a tool from any agent with the given JSON object as arguments, validating them against the tool's schema first.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := ""
		if len(args) == 2 {
			raw = args[1]
		}
		debug := GetConfig() != nil && GetConfig().Debug
		return runToolCall(commandContext(cmd), cmd.OutOrStdout(), args[0], raw, debug)
	},
}

func init() {
	toolsCmd.AddCommand(toolsCallCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolCall(ctx context.Context, out io.Writer, name, rawArgs string, debug bool) error {
	catalog, _, err := buildCatalog(GetConfig())
	if err != nil {
		return err
	}
	registry, err := toolOwner(catalog, name)
	if err != nil {
		return err
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return fmt.Errorf("%w: arguments must be a JSON object: %w", tools.ErrInvalidArguments, err)
		}
	}
	if debug {
		_, _ = pp.Fprintln(out, args)
	}

	result, err := registry.Execute(ctx, name, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

// toolOwner finds the registry of the agent that owns the named tool.
func toolOwner(catalog *agents.Catalog, name string) (*tools.Registry, error) {
	for _, agent := range catalog.List() {
		if agent.Tools == nil {
			continue
		}
		if _, ok := agent.Tools.Lookup(name); ok {
			return agent.Tools, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", tools.ErrUnknownTool, name)
}
