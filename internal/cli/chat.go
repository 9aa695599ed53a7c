// internal/cli/chat.go
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mwiater/agents/internal/tui"
)

// startGUI is a function alias to tui.StartGUI for starting the chat interface.
var startGUI = tui.StartGUI

var chatAgent string

// chatCmd represents the 'chat' command, which starts an interactive chat session.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a chat session",
	Long:  `The 'chat' command opens the agent selector and chats with the chosen agent. Use --agent to skip the selector.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(commandContext(cmd), chatAgent)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatAgent, "agent", "a", "", "agent name or title to open directly")
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context, agentName string) error {
	cfg := GetConfig()
	catalog, _, err := buildCatalog(cfg)
	if err != nil {
		return err
	}
	provider, err := buildChatProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return startGUI(ctx, cfg, catalog, provider, agentName)
}

// commandContext returns the command's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
