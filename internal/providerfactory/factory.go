// internal/providerfactory/factory.go
package providerfactory

import (
	"context"
	"fmt"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/logging"
	"github.com/mwiater/agents/internal/providers"
	"github.com/mwiater/agents/internal/providers/gemini"
	"github.com/mwiater/agents/internal/providers/ollama"
)

// NewChatProvider selects and configures the chat provider named by cfg.Provider.
// Gemini is the default; ollama talks to the configured chat host.
func NewChatProvider(ctx context.Context, cfg *appconfig.Config) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to provider factory")
	}

	switch name := cfg.ChatProvider(); name {
	case appconfig.ProviderGemini:
		provider, err := gemini.New(ctx, cfg)
		if err != nil {
			logging.LogEvent("Gemini provider unavailable: %v", err)
			return nil, err
		}
		return provider, nil
	case appconfig.ProviderOllama:
		return ollama.New(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", name)
	}
}

// ChatTarget resolves the host and model a chat should use. agentModel is the model
// the agent was built for; a configured chatModel overrides it.
func ChatTarget(cfg *appconfig.Config, agentModel string) (appconfig.Host, string, error) {
	model := agentModel
	if cfg.ChatModel != "" {
		model = cfg.ChatModel
	}
	if cfg.ChatProvider() != appconfig.ProviderOllama {
		return appconfig.Host{Name: appconfig.ProviderGemini}, model, nil
	}
	host, err := cfg.ChatHostEntry()
	if err != nil {
		return appconfig.Host{}, "", err
	}
	return host, model, nil
}
