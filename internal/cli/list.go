// internal/cli/list.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// listCmd groups the listing subcommands.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Group commands for listing resources",
	Long:  `The 'list' command groups subcommands that list agents, tools and commands.`,
}

var listAgentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the available agents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListAgents(cmd.OutOrStdout())
	},
}

var listToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List every agent's tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListTools(cmd.OutOrStdout())
	},
}

// commandsCmd implements 'list commands', which prints the available
// commands and subcommands in a hierarchical, indented, two-column format.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runListCommands(cmd.OutOrStdout(), rootCmd)
	},
}

func init() {
	listCmd.AddCommand(listAgentsCmd, listToolsCmd, commandsCmd)
	rootCmd.AddCommand(listCmd)
}

func runListAgents(out io.Writer) error {
	catalog, _, err := buildCatalog(GetConfig())
	if err != nil {
		return err
	}
	rows := make([][2]string, 0, len(catalog.List()))
	for _, agent := range catalog.List() {
		rows = append(rows, [2]string{agent.Name, agent.Title + ": " + agent.Description})
	}
	printColumns(out, "Agents:", rows)
	return nil
}

func runListTools(out io.Writer) error {
	catalog, _, err := buildCatalog(GetConfig())
	if err != nil {
		return err
	}
	var rows [][2]string
	for _, agent := range catalog.List() {
		if agent.Tools == nil {
			continue
		}
		for _, def := range agent.Tools.Definitions() {
			rows = append(rows, [2]string{agent.Name + " " + def.Name, firstLine(def.Description)})
		}
	}
	printColumns(out, "Tools:", rows)
	return nil
}

// runListCommands prints the command tree in a two-column layout.
func runListCommands(out io.Writer, root *cobra.Command) {
	var rows [][2]string
	for _, data := range collectCommandData(root, "", "") {
		if strings.Contains(data.path, "completion") {
			continue
		}
		rows = append(rows, [2]string{data.path, data.description})
	}
	printColumns(out, "Commands and Subcommands:", rows)
}

// commandInfo holds the path and description of a command for display.
type commandInfo struct {
	path        string
	description string
}

// collectCommandData walks the command tree and returns a flattened slice of
// path/description pairs.
func collectCommandData(cmd *cobra.Command, currentPath string, indent string) []commandInfo {
	fullPath := cmd.Name()
	if currentPath != "" {
		fullPath = currentPath + " " + cmd.Name()
	}

	allData := []commandInfo{{path: indent + fullPath, description: cmd.Short}}
	for _, subCmd := range cmd.Commands() {
		allData = append(allData, collectCommandData(subCmd, fullPath, indent+"  ")...)
	}
	return allData
}

func printColumns(out io.Writer, heading string, rows [][2]string) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	fmt.Fprintln(out, heading)
	for _, row := range rows {
		fmt.Fprintf(out, "  %s%s%s\n", row[0], strings.Repeat(" ", width-len(row[0])+2), row[1])
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
