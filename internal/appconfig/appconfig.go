// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// ProviderGemini selects the Gemini API for chat and embeddings.
	ProviderGemini = "gemini"
	// ProviderOllama selects an Ollama-compatible host for chat and embeddings.
	ProviderOllama = "ollama"
	// DefaultGeminiEmbeddingModel is the embedding model used when none is configured.
	DefaultGeminiEmbeddingModel = "text-embedding-004"
	// defaultRequestTimeout is the default timeout for HTTP requests.
	defaultRequestTimeout = 600 * time.Second
	// defaultLogFile is used when the config omits logFile.
	defaultLogFile = "agents.log"
)

// DefaultEnvFiles lists the dotenv files read at startup when the config does not name any.
var DefaultEnvFiles = []string{".env", "greeting_agent/.env", "thoughtful_ai_agent/.env"}

// Config represents the top-level application configuration.
type Config struct {
	Provider          string   `json:"provider" mapstructure:"provider"`
	Hosts             []Host   `json:"hosts" mapstructure:"hosts"`
	ChatHost          string   `json:"chatHost,omitempty" mapstructure:"chatHost"`
	ChatModel         string   `json:"chatModel,omitempty" mapstructure:"chatModel"`
	EmbeddingProvider string   `json:"embeddingProvider,omitempty" mapstructure:"embeddingProvider"`
	EmbeddingModel    string   `json:"embeddingModel,omitempty" mapstructure:"embeddingModel"`
	EmbeddingHost     string   `json:"embeddingHost,omitempty" mapstructure:"embeddingHost"`
	GoogleAPIKey      string   `json:"googleAPIKey,omitempty" mapstructure:"googleAPIKey"`
	EnvFiles          []string `json:"envFiles,omitempty" mapstructure:"envFiles"`
	Debug             bool     `json:"debug" mapstructure:"debug"`
	JSONMode          bool     `json:"jsonMode" mapstructure:"jsonMode"`
	TimeoutSeconds    int      `json:"timeout,omitempty" mapstructure:"timeout"`
	LogFile           string   `json:"logFile,omitempty" mapstructure:"logFile"`
	ConfigPath        string   `json:"-" mapstructure:"-"`
}

// Host represents a single Ollama-compatible host that can serve language models.
type Host struct {
	Name string `json:"name" mapstructure:"name"`
	URL  string `json:"url" mapstructure:"url"`
}

// Parameters defines the set of parameters that can be used to control a language model's behavior.
type Parameters struct {
	TopK            *int     `json:"top_k,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"max_output_tokens,omitempty"`
	RepeatPenalty   *float64 `json:"repeat_penalty,omitempty"`
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// ChatProvider returns the normalized chat provider name.
func (c Config) ChatProvider() string {
	p := strings.ToLower(strings.TrimSpace(c.Provider))
	if p == "" {
		return ProviderGemini
	}
	return p
}

// EmbeddingProviderName returns the embedding provider, defaulting to the chat provider.
func (c Config) EmbeddingProviderName() string {
	p := strings.ToLower(strings.TrimSpace(c.EmbeddingProvider))
	if p == "" {
		return c.ChatProvider()
	}
	return p
}

// EmbeddingModelName returns the configured embedding model, applying the Gemini default.
func (c Config) EmbeddingModelName() string {
	if m := strings.TrimSpace(c.EmbeddingModel); m != "" {
		return m
	}
	if c.EmbeddingProviderName() == ProviderGemini {
		return DefaultGeminiEmbeddingModel
	}
	return ""
}

// APIKey returns the Gemini API key from the config or the environment.
func (c Config) APIKey() string {
	if k := strings.TrimSpace(c.GoogleAPIKey); k != "" {
		return k
	}
	for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"} {
		if k := strings.TrimSpace(os.Getenv(name)); k != "" {
			return k
		}
	}
	return ""
}

// EnvFilePaths returns the dotenv files to load.
func (c Config) EnvFilePaths() []string {
	if len(c.EnvFiles) > 0 {
		return c.EnvFiles
	}
	return DefaultEnvFiles
}

// ChatHostEntry resolves the host used for chat requests.
func (c Config) ChatHostEntry() (Host, error) {
	return c.lookupHost(c.ChatHost, "chatHost")
}

// EmbeddingHostEntry resolves the host used for embedding requests.
func (c Config) EmbeddingHostEntry() (Host, error) {
	name := c.EmbeddingHost
	if strings.TrimSpace(name) == "" {
		name = c.ChatHost
	}
	return c.lookupHost(name, "embeddingHost")
}

// lookupHost finds a host by name; an empty name selects the first configured host.
func (c Config) lookupHost(name, key string) (Host, error) {
	if len(c.Hosts) == 0 {
		return Host{}, fmt.Errorf("%s: no hosts configured", key)
	}
	if strings.TrimSpace(name) == "" {
		return c.Hosts[0], nil
	}
	for _, host := range c.Hosts {
		if host.Name == name {
			return host, nil
		}
	}
	return Host{}, fmt.Errorf("%s %q not found in config hosts", key, name)
}

// Validate reports configuration combinations that cannot work.
func (c Config) Validate() error {
	switch c.ChatProvider() {
	case ProviderGemini:
	case ProviderOllama:
		if strings.TrimSpace(c.ChatModel) == "" {
			return errors.New("chatModel is required when provider is ollama")
		}
		if _, err := c.ChatHostEntry(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderGemini, ProviderOllama)
	}
	switch c.EmbeddingProviderName() {
	case ProviderGemini:
	case ProviderOllama:
		if c.EmbeddingModelName() == "" {
			return errors.New("embeddingModel is required when embeddingProvider is ollama")
		}
		if _, err := c.EmbeddingHostEntry(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown embeddingProvider %q", c.EmbeddingProvider)
	}
	return nil
}

// LoadEnv reads the configured dotenv files into the process environment.
// Missing files are skipped and variables already set are never overwritten.
func LoadEnv(paths []string) []string {
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			continue
		}
		loaded = append(loaded, path)
	}
	return loaded
}

// Load reads the application configuration from the specified path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
