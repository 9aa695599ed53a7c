package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		cfg = &fallback
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Provider:           %s\n", cfg.ChatProvider())
	if cfg.ChatModel != "" {
		fmt.Fprintf(out, "  Chat Model:         %s\n", cfg.ChatModel)
	}
	fmt.Fprintf(out, "  Embedding Provider: %s\n", cfg.EmbeddingProviderName())
	fmt.Fprintf(out, "  Embedding Model:    %s\n", cfg.EmbeddingModelName())
	fmt.Fprintf(out, "  Debug:              %v\n", cfg.Debug)
	fmt.Fprintf(out, "  JSON Mode:          %v\n", cfg.JSONMode)
	fmt.Fprintf(out, "  Timeout:            %s\n", cfg.RequestTimeout())
	fmt.Fprintf(out, "  Log File:           %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Env Files:          %v\n", cfg.EnvFilePaths())
	if cfg.APIKey() != "" {
		fmt.Fprintln(out, "  Google API Key:     set")
	} else {
		fmt.Fprintln(out, "  Google API Key:     missing")
	}
	for _, host := range cfg.Hosts {
		fmt.Fprintf(out, "  Host:               %s (%s)\n", host.Name, host.URL)
	}
}
