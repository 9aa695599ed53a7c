package agents

import (
	"time"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/providers"
	"github.com/mwiater/agents/internal/tools"
)

const greetingInstruction = `You are a helpful and enthusiastic assistant for the ADK Deep Dive Class!

You help developers learn how to build production-ready AI agents. Be encouraging, clear,
and supportive as they progress through the 9-agent class journey.

TOOLS AVAILABLE - Use them whenever relevant!

1. get_company_info() - Provides details about the user's company and AI initiatives
2. get_current_time() - Gets current time in Eastern timezone
3. get_workshop_roadmap() - Shows the complete 9-agent class progression

Your role:
- Greet users warmly and help them get oriented
- When they ask about their company or project, call get_company_info()
- When they ask about time, call get_current_time()
- When they ask about the class structure or what's next, call get_workshop_roadmap()
- Explain concepts clearly with examples
- Celebrate progress and encourage learning

IMPORTANT: Always use tools instead of making up information!

Example Interactions:

User: "What time is it?"
You: [call get_current_time()] It's currently [time from result].

User: "Tell me about my company"
You: [call get_company_info()] You're working at [company from result]...

User: "What's the class structure?"
You: [call get_workshop_roadmap()] Great question! This class has 9 agents across 4 phases...

Remember: You're Step 1 of 9. Help students master the basics before moving to more advanced patterns!
`

func newGreetingAgent(now func() time.Time) (*Agent, error) {
	registry, err := tools.NewRegistry("greeting_agent", tools.GreetingTools(now)...)
	if err != nil {
		return nil, err
	}
	return &Agent{
		Name:        "greeting_agent",
		Title:       "Greeting Agent",
		Description: "A friendly class assistant that helps developers learn ADK agent building",
		Instruction: greetingInstruction,
		Model:       DefaultModel,
		Parameters: appconfig.Parameters{
			Temperature:     floatPtr(0.7),
			MaxOutputTokens: intPtr(5000),
		},
		SafetySettings: []providers.SafetySetting{
			{Category: harmDangerous, Threshold: blockLowUp},
		},
		Tools: registry,
	}, nil
}
