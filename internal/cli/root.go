// internal/cli/root.go
// Package cli wires the agents command tree together with cobra and viper.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	configFound   bool
	loadedEnv     []string
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "agents",
	Short:         "agents: terminal chatbot agents with tools and a knowledge base",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		for _, name := range []string{"debug", "jsonMode"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, strconv.FormatBool(viper.GetBool(name)))
			}
		}
		for _, name := range []string{"provider", "chatModel", "logFile"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(name))
			}
		}
		if !cmd.Flags().Changed("timeout") {
			_ = cmd.Flags().Set("timeout", strconv.Itoa(viper.GetInt("timeout")))
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		if configFound {
			cfg.ConfigPath = viper.ConfigFileUsed()
		}
		currentConfig = &cfg
		loadedEnv = appconfig.LoadEnv(cfg.EnvFilePaths())

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.LogEvent("agents %s: provider=%s config=%q env=%v", appVersion, cfg.ChatProvider(), cfg.ConfigPath, loadedEnv)
		return nil
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	err := rootCmd.Execute()
	_ = logging.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("jsonMode", false, "ask the model for JSON output")
	rootCmd.PersistentFlags().String("provider", "", "chat provider: gemini or ollama")
	rootCmd.PersistentFlags().String("chatModel", "", "model name overriding each agent's default")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().Int("timeout", 0, "request timeout in seconds (0 = default)")

	bindFlags()
}

// bindFlags lets the persistent flags override config file values.
func bindFlags() {
	for _, name := range []string{"debug", "jsonMode", "provider", "chatModel", "logFile", "timeout"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig points viper at the config file named by --config.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file. A missing file leaves the defaults in place.
func ensureConfigLoaded() error {
	configFound = false
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	configFound = true
	return nil
}

// GetConfig returns the configuration materialized by the last command run.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
