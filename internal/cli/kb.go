// internal/cli/kb.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mwiater/agents/internal/knowledge"
)

var (
	matchFound   = color.New(color.FgGreen).SprintFunc()
	matchMissing = color.New(color.FgYellow).SprintFunc()
	matchError   = color.New(color.FgRed).SprintFunc()
)

// kbCmd groups the knowledge base subcommands.
var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Query the Thoughtful AI knowledge base",
}

var kbSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the knowledge base as the agent's tool would",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, lookup, err := buildCatalog(GetConfig())
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), matchError(knowledge.FormatError(err)))
			return
		}
		answer := lookup.Answer(commandContext(cmd), strings.Join(args, " "))
		fmt.Fprintln(cmd.OutOrStdout(), colorAnswer(answer))
	},
}

var kbDatasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Print the knowledge base questions and answers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printDataset(cmd.OutOrStdout(), knowledge.Dataset())
	},
}

func init() {
	kbCmd.AddCommand(kbSearchCmd, kbDatasetCmd)
	rootCmd.AddCommand(kbCmd)
}

// colorAnswer colors a lookup answer by its outcome.
func colorAnswer(answer string) string {
	switch {
	case strings.HasPrefix(answer, "[Match Found"):
		return matchFound(answer)
	case strings.HasPrefix(answer, "[No High Confidence Match"):
		return matchMissing(answer)
	default:
		return matchError(answer)
	}
}

func printDataset(out io.Writer, entries []knowledge.QAEntry) {
	for i, entry := range entries {
		fmt.Fprintf(out, "%2d. Q: %s\n    A: %s\n", i+1, entry.Question, entry.Answer)
	}
}
