// Package mcpserver exposes the agents' tools over the Model Context Protocol so
// other MCP clients can call them directly.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mwiater/agents/internal/agents"
	"github.com/mwiater/agents/internal/knowledge"
	"github.com/mwiater/agents/internal/logging"
	"github.com/mwiater/agents/internal/tools"
)

// Name is the implementation name reported to MCP clients.
const Name = "agents"

// Server wraps an mcp.Server with every catalog tool registered on it.
type Server struct {
	server *mcp.Server
	tools  []string
}

// lookupInput is the argument shape of the knowledge base tool.
type lookupInput struct {
	Query string `json:"query" jsonschema:"The user's question to look up"`
}

// noInput is used by tools that take no arguments.
type noInput struct{}

// New registers the tools of every agent in the catalog. A tool name shared by
// two agents is an error.
func New(catalog *agents.Catalog, version string) (*Server, error) {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	s := &Server{server: server}

	owners := map[string]string{}
	for _, agent := range catalog.List() {
		if agent.Tools == nil {
			continue
		}
		for _, tool := range agent.Tools.Tools() {
			name := tool.Definition.Name
			if owner, exists := owners[name]; exists {
				return nil, fmt.Errorf("mcpserver: tool %q registered by both %s and %s", name, owner, agent.Name)
			}
			owners[name] = agent.Name
			s.register(agent.Tools, tool)
			s.tools = append(s.tools, name)
		}
	}
	logging.LogEvent("mcpserver: registered %d tools", len(s.tools))
	return s, nil
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// Run serves MCP over the given transport until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// RunStdio serves MCP over stdin/stdout.
func (s *Server) RunStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to one transport and returns the session.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

func (s *Server) register(registry *tools.Registry, tool tools.Tool) {
	meta := &mcp.Tool{Name: tool.Definition.Name, Description: tool.Definition.Description}
	switch {
	case tool.Definition.Name == knowledge.ToolName:
		mcp.AddTool(s.server, meta, handler[lookupInput](registry, meta.Name))
	case !hasProperties(tool.Definition.Parameters):
		mcp.AddTool(s.server, meta, handler[noInput](registry, meta.Name))
	default:
		mcp.AddTool(s.server, meta, handler[map[string]any](registry, meta.Name))
	}
}

// handler runs a registry tool with the typed MCP input converted back to a map.
// Tool failures are reported to the client as error results.
func handler[In any](registry *tools.Registry, name string) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		args, err := toArgs(input)
		if err != nil {
			return errorResult(err), nil, nil
		}
		result, err := registry.Execute(ctx, name, args)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: result},
			},
		}, nil, nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}

func toArgs(input any) (map[string]any, error) {
	if m, ok := input.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	args := map[string]any{}
	if err := json.Unmarshal(data, &args); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return args, nil
}

func hasProperties(schema map[string]any) bool {
	props, ok := schema["properties"].(map[string]any)
	return ok && len(props) > 0
}
