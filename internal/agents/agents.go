// Package agents defines the chat agents: their prompts, generation settings and tools.
package agents

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/knowledge"
	"github.com/mwiater/agents/internal/providers"
	"github.com/mwiater/agents/internal/tools"
)

// ErrUnknownAgent is returned by Catalog.Get for names that match no agent.
var ErrUnknownAgent = errors.New("unknown agent")

// DefaultModel is the Gemini model both agents are built for.
const DefaultModel = "gemini-2.0-flash-exp"

const (
	harmDangerous  = "HARM_CATEGORY_DANGEROUS_CONTENT"
	harmHate       = "HARM_CATEGORY_HATE_SPEECH"
	harmHarassment = "HARM_CATEGORY_HARASSMENT"
	harmSexual     = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	blockLowUp     = "BLOCK_LOW_AND_ABOVE"
)

// Agent bundles a prompt, generation settings and tools.
type Agent struct {
	Name           string
	Title          string
	Description    string
	Instruction    string
	Model          string
	Parameters     appconfig.Parameters
	SafetySettings []providers.SafetySetting
	Tools          *tools.Registry
}

// Request builds a provider request for this agent over history.
func (a *Agent) Request(host appconfig.Host, model string, history []providers.ChatMessage) providers.StreamRequest {
	if model == "" {
		model = a.Model
	}
	req := providers.StreamRequest{
		Host:           host,
		Model:          model,
		History:        history,
		SystemPrompt:   a.Instruction,
		Parameters:     a.Parameters,
		SafetySettings: a.SafetySettings,
	}
	if a.Tools != nil {
		req.Tools = a.Tools.Definitions()
		req.ToolExecutor = a.Tools.Executor()
	}
	return req
}

// Catalog is the ordered set of available agents.
type Catalog struct {
	agents []*Agent
}

// Options configures the built-in agents.
type Options struct {
	// Lookup backs the thoughtful agent's search_knowledge_base tool.
	Lookup *knowledge.Lookup
	// Now is the greeting agent's clock; nil means time.Now.
	Now func() time.Time
}

// NewCatalog builds the greeting and Thoughtful AI agents.
func NewCatalog(opts Options) (*Catalog, error) {
	if opts.Lookup == nil {
		return nil, errors.New("agents: knowledge lookup is required")
	}
	greeting, err := newGreetingAgent(opts.Now)
	if err != nil {
		return nil, err
	}
	thoughtful, err := newThoughtfulAgent(opts.Lookup)
	if err != nil {
		return nil, err
	}
	return &Catalog{agents: []*Agent{greeting, thoughtful}}, nil
}

// List returns the agents in display order.
func (c *Catalog) List() []*Agent {
	return append([]*Agent(nil), c.agents...)
}

// Get finds an agent by name or title, ignoring case.
func (c *Catalog) Get(name string) (*Agent, error) {
	key := strings.TrimSpace(name)
	for _, a := range c.agents {
		if strings.EqualFold(a.Name, key) || strings.EqualFold(a.Title, key) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
