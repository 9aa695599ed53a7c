package agents

import (
	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/knowledge"
	"github.com/mwiater/agents/internal/providers"
	"github.com/mwiater/agents/internal/tools"
)

const thoughtfulInstruction = `You are a customer support agent for Thoughtful AI,
a healthcare automation company.

Our products:
- EVA (Eligibility Verification Agent): Automates patient eligibility verification
- CAM (Claims Processing Agent): Streamlines claims submission and management
- PHIL (Payment Posting Agent): Automates payment posting and reconciliation

Guidelines:
- ALWAYS check the knowledge base using the ` + "`search_knowledge_base`" + ` tool first.
- Be helpful, professional, and concise.
- Keep responses under 150 words.
- If you don't know specific product details and the knowledge base doesn't help, acknowledge it.
- For healthcare-specific questions, remind users to consult medical professionals.
- Focus on our automation products, not medical advice.

Remember: We're a healthcare automation company, not medical providers.
`

func newThoughtfulAgent(lookup *knowledge.Lookup) (*Agent, error) {
	registry, err := tools.NewRegistry("thoughtful_ai_agent", tools.KnowledgeTool(lookup))
	if err != nil {
		return nil, err
	}
	return &Agent{
		Name:        "thoughtful_ai_agent",
		Title:       "Thoughtful AI Agent",
		Description: "A healthcare support agent demonstrating model literacy and production principles.",
		Instruction: thoughtfulInstruction,
		Model:       DefaultModel,
		Parameters: appconfig.Parameters{
			Temperature:     floatPtr(0.3),
			MaxOutputTokens: intPtr(300),
		},
		SafetySettings: []providers.SafetySetting{
			{Category: harmDangerous, Threshold: blockLowUp},
			{Category: harmHate, Threshold: blockLowUp},
			{Category: harmHarassment, Threshold: blockLowUp},
			{Category: harmSexual, Threshold: blockLowUp},
		},
		Tools: registry,
	}, nil
}
