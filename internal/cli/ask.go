// internal/cli/ask.go
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/providerfactory"
	"github.com/mwiater/agents/internal/providers"
)

var (
	toolNote  = color.New(color.FgYellow).SprintFunc()
	toolError = color.New(color.FgRed).SprintFunc()
)

// askCmd sends one message to an agent and streams the answer to stdout.
var askCmd = &cobra.Command{
	Use:   "ask <agent> <message...>",
	Short: "Ask an agent a single question",
	Long:  `The 'ask' command sends one message to the named agent and streams its answer to stdout. Tool calls are reported on stderr.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args[1:], " ")
		return runAsk(commandContext(cmd), cmd.OutOrStdout(), cmd.ErrOrStderr(), GetConfig(), args[0], message)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, out, errOut io.Writer, cfg *appconfig.Config, agentName, message string) error {
	catalog, _, err := buildCatalog(cfg)
	if err != nil {
		return err
	}
	agent, err := catalog.Get(agentName)
	if err != nil {
		return err
	}
	provider, err := buildChatProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	host, model, err := providerfactory.ChatTarget(cfg, agent.Model)
	if err != nil {
		return err
	}
	if err := provider.EnsureModelReady(ctx, host, model); err != nil {
		return fmt.Errorf("prepare model %s: %w", model, err)
	}

	req := agent.Request(host, model, []providers.ChatMessage{{Role: "user", Content: message}})
	req.JSONMode = cfg.JSONMode

	return provider.Stream(ctx, req, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			_, err := io.WriteString(out, msg.Content)
			return err
		},
		OnToolCall: func(call providers.ToolCall) error {
			if call.Err != nil {
				fmt.Fprintf(errOut, "%s %s\n", toolError("Tool failed: "+call.Name), call.Err)
				return nil
			}
			fmt.Fprintln(errOut, toolNote("Tool used: "+call.Name))
			return nil
		},
		OnComplete: func(meta providers.StreamMetadata) error {
			fmt.Fprintln(out)
			if cfg.Debug {
				_, _ = pp.Fprintln(errOut, meta)
			}
			return nil
		},
	})
}
