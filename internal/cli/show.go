// internal/cli/show.go
package cli

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/agents/internal/appconfig"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
	Long:  `The 'show' command groups subcommands that display resources or information related to agents.`,
}

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Provider:       viper.GetString("provider"),
			ChatModel:      viper.GetString("chatModel"),
			Debug:          viper.GetBool("debug"),
			JSONMode:       viper.GetBool("jsonMode"),
			TimeoutSeconds: viper.GetInt("timeout"),
			LogFile:        viper.GetString("logFile"),
		}
		cfg := GetConfig()
		file := ""
		if cfg != nil {
			file = cfg.ConfigPath
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), file, cfg, fallback)
		if len(loadedEnv) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  Loaded Env:         %v\n", loadedEnv)
		}
		if fallback.Debug && cfg != nil {
			redacted := *cfg
			if redacted.GoogleAPIKey != "" {
				redacted.GoogleAPIKey = "***"
			}
			_, _ = pp.Fprintln(cmd.OutOrStdout(), redacted)
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(showCmd)
}
