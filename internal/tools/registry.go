// Package tools holds the functions agents can call, keyed by name, together with
// the JSON schema each call's arguments must satisfy.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mwiater/agents/internal/logging"
	"github.com/mwiater/agents/internal/providers"
)

var (
	// ErrUnknownTool is returned when a call names a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when arguments fail the tool's schema.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Handler runs a tool with already-validated arguments.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool is a callable function exposed to a model.
type Tool struct {
	Definition providers.ToolDefinition
	Handler    Handler
}

// Registry is an ordered set of tools belonging to one agent.
type Registry struct {
	agent string
	tools []Tool
	index map[string]int
}

// NewRegistry registers tools in order for the named agent.
func NewRegistry(agent string, tools ...Tool) (*Registry, error) {
	r := &Registry{agent: agent, index: make(map[string]int, len(tools))}
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Names must be unique and handlers non-nil.
func (r *Registry) Register(tool Tool) error {
	name := strings.TrimSpace(tool.Definition.Name)
	if name == "" {
		return errors.New("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %q has no handler", name)
	}
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("tool %q registered twice", name)
	}
	r.index[name] = len(r.tools)
	r.tools = append(r.tools, tool)
	return nil
}

// Agent returns the name of the agent that owns the registry.
func (r *Registry) Agent() string { return r.agent }

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	return append([]Tool(nil), r.tools...)
}

// Definitions returns the tool definitions in registration order.
func (r *Registry) Definitions() []providers.ToolDefinition {
	defs := make([]providers.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	return defs
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	idx, ok := r.index[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[idx], true
}

// Execute validates args against the tool's schema and runs it.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := r.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownTool, name)
		logging.LogToolCall(r.agent, name, args, "", err)
		return "", err
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := validateArguments(tool.Definition, args); err != nil {
		err = fmt.Errorf("%w for %s: %w", ErrInvalidArguments, name, err)
		logging.LogToolCall(r.agent, name, args, "", err)
		return "", err
	}
	result, err := tool.Handler(ctx, args)
	logging.LogToolCall(r.agent, name, args, result, err)
	return result, err
}

// Executor adapts the registry for providers.
func (r *Registry) Executor() providers.ToolExecutor {
	return r.Execute
}

// validateArguments checks args against the tool's JSON schema, if it has one.
func validateArguments(def providers.ToolDefinition, args map[string]any) error {
	if len(def.Parameters) == 0 {
		return nil
	}
	argBytes, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal arguments for validation: %w", err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(def.Parameters), gojsonschema.NewBytesLoader(argBytes))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return errors.New(strings.Join(details, "; "))
}

func definition(name, description string, params map[string]any) providers.ToolDefinition {
	return providers.ToolDefinition{Name: name, Description: description, Parameters: params}
}

// objectSchema builds a JSON schema for an object with string properties.
func objectSchema(required []string, props map[string]string) map[string]any {
	properties := make(map[string]any, len(props))
	for name, desc := range props {
		properties[name] = map[string]any{"type": "string", "description": desc}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// jsonResult renders a tool result as indented JSON text.
func jsonResult(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
