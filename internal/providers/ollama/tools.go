// internal/providers/ollama/tools.go
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/providers"
)

// logTools logs the available tool names if debug mode is enabled.
func logTools(debug bool, tools []providers.ToolDefinition) {
	if !debug {
		return
	}
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		if tool.Name != "" {
			names = append(names, tool.Name)
		}
	}
	if len(names) == 0 {
		log.Printf("Tools: false")
		return
	}
	log.Printf("Tools: {%s}", strings.Join(names, ", "))
}

// formatToolsForPayload converts a slice of ToolDefinition into a format suitable for the Ollama API payload.
func formatToolsForPayload(tools []providers.ToolDefinition) []map[string]any {
	formatted := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		function := map[string]any{
			"name": tool.Name,
		}
		if tool.Description != "" {
			function["description"] = tool.Description
		}
		if tool.Parameters != nil {
			function["parameters"] = tool.Parameters
		}
		formatted = append(formatted, map[string]any{
			"type":     "function",
			"function": function,
		})
	}
	return formatted
}

// hostIdentifier returns a string identifier for a given host, preferring the name over the URL.
func hostIdentifier(host appconfig.Host) string {
	if name := strings.TrimSpace(host.Name); name != "" {
		return name
	}
	if url := strings.TrimSpace(host.URL); url != "" {
		return url
	}
	return "ollama-host"
}

// toolCall represents a structured tool call from the Ollama API.
type toolCall struct {
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// executeToolCalls runs each call and returns the "tool" messages carrying the results.
func executeToolCalls(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks, calls []toolCall) ([]chatMessage, error) {
	out := make([]chatMessage, 0, len(calls))
	for _, tc := range calls {
		name := resolveToolName(tc.Function.Name, req.Tools)
		args, parseErr := parseToolArguments(tc.Function.Arguments)

		var call providers.ToolCall
		if parseErr != nil {
			call = providers.ToolCall{Name: name, Err: parseErr}
			if callbacks.OnToolCall != nil {
				if err := callbacks.OnToolCall(call); err != nil {
					return nil, err
				}
			}
		} else {
			var err error
			call, err = providers.RunTool(ctx, req, callbacks, name, args)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, chatMessage{Role: "tool", Content: call.ResponseText(), ToolName: name})
	}
	return out, nil
}

// resolveToolName maps a model-supplied name onto a declared tool, ignoring case.
// Unknown names are passed through so the executor can report them.
func resolveToolName(candidate string, available []providers.ToolDefinition) string {
	name := strings.TrimSpace(candidate)
	if name == "" && len(available) == 1 {
		return available[0].Name
	}
	for _, def := range available {
		if strings.EqualFold(def.Name, name) {
			return def.Name
		}
	}
	return name
}

var (
	singleQuotedStringPattern = regexp.MustCompile(`'([^']*)'`)
	trailingCommaPattern      = regexp.MustCompile(`,\s*([}\]])`)
)

// parseToolArguments parses tool arguments sent either as a JSON object or as a
// string containing one.
func parseToolArguments(raw json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err == nil {
		return args, nil
	}
	var argString string
	if err := json.Unmarshal(raw, &argString); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}
	argString = strings.TrimSpace(argString)
	if argString == "" {
		return args, nil
	}
	err := json.Unmarshal([]byte(argString), &args)
	if err == nil {
		return args, nil
	}
	if sanitized := sanitizeLegacyJSON(argString); sanitized != argString {
		if json.Unmarshal([]byte(sanitized), &args) == nil {
			return args, nil
		}
	}
	return nil, fmt.Errorf("parse tool arguments string: %w", err)
}

// sanitizeLegacyJSON cleans up common JSON-like syntax errors, such as single quotes and trailing commas.
func sanitizeLegacyJSON(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return s
	}
	replaced := singleQuotedStringPattern.ReplaceAllString(s, `"$1"`)
	return trailingCommaPattern.ReplaceAllString(replaced, "$1")
}

// isNoToolCapabilityResponse checks if the response body indicates that the model does not support tools.
func isNoToolCapabilityResponse(body []byte) bool {
	text := strings.ToLower(strings.TrimSpace(string(body)))
	if text == "" {
		return false
	}
	return strings.Contains(text, "tool") && (strings.Contains(text, "support") || strings.Contains(text, "capab"))
}
