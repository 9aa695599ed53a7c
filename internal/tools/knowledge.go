package tools

import (
	"context"

	"github.com/mwiater/agents/internal/knowledge"
)

// KnowledgeTool exposes lookup as search_knowledge_base(query). The handler always
// returns text: lookup failures are rendered into the result, never returned as errors.
func KnowledgeTool(lookup *knowledge.Lookup) Tool {
	return Tool{
		Definition: definition(knowledge.ToolName, knowledge.ToolDescription, objectSchema(
			[]string{"query"},
			map[string]string{"query": "The user's question to search for"},
		)),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			return lookup.Answer(ctx, query), nil
		},
	}
}
