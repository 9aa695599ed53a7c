// internal/providers/provider.go

// Package providers defines the interfaces for interacting with chat model providers.
// It provides a common abstraction layer for streaming responses and dispatching
// model-requested tool calls, regardless of the underlying provider (Gemini, Ollama).
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mwiater/agents/internal/appconfig"
)

// MaxToolRounds caps how many times a provider re-invokes the model after tool calls
// within a single Stream call.
const MaxToolRounds = 5

// ErrTooManyToolRounds is returned when the model keeps requesting tools after MaxToolRounds.
var ErrTooManyToolRounds = errors.New("model requested tools for too many rounds")

// ChatMessage represents a single message in a chat conversation.
// Role is "user" or "assistant"; providers translate it to their own vocabulary.
type ChatMessage struct {
	Role    string
	Content string
}

// ToolDefinition defines the structure of a tool that can be invoked by a provider.
// Parameters is a JSON schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ToolExecutor is a function type for executing a tool.
// It takes the tool's name and arguments and returns the result as a string.
type ToolExecutor func(ctx context.Context, name string, args map[string]any) (string, error)

// ToolCall describes one executed tool call.
type ToolCall struct {
	Name   string
	Args   map[string]any
	Result string
	Err    error
}

// Response returns the payload handed back to the model for this call: the result
// under "result", or the error message under "error".
func (c ToolCall) Response() map[string]any {
	if c.Err != nil {
		return map[string]any{"error": c.Err.Error()}
	}
	return map[string]any{"result": c.Result}
}

// ResponseText is Response rendered as JSON text for providers that take string
// tool messages.
func (c ToolCall) ResponseText() string {
	if c.Err == nil {
		return c.Result
	}
	data, err := json.Marshal(c.Response())
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, c.Err.Error())
	}
	return string(data)
}

// SafetySetting blocks a harm category at or above a threshold. Values use the
// Gemini enum names, e.g. HARM_CATEGORY_HATE_SPEECH / BLOCK_LOW_AND_ABOVE.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// StreamMetadata contains metadata about a completed chat stream,
// including timing and token counts where the provider reports them.
type StreamMetadata struct {
	Model           string
	CreatedAt       time.Time
	Done            bool
	TotalDuration   int64
	PromptEvalCount int
	EvalCount       int
	ToolRounds      int
}

// StreamRequest encapsulates all the information needed to initiate a chat stream.
type StreamRequest struct {
	Host             appconfig.Host
	Model            string
	History          []ChatMessage
	SystemPrompt     string
	Parameters       appconfig.Parameters
	SafetySettings   []SafetySetting
	JSONMode         bool
	Tools            []ToolDefinition
	DisableStreaming bool
	ToolExecutor     ToolExecutor
}

// StreamCallbacks defines the callback functions that are invoked during a chat stream.
// OnChunk is called for each text chunk, OnToolCall after each tool execution and
// OnComplete once the model has produced its final answer.
type StreamCallbacks struct {
	OnChunk    func(ChatMessage) error
	OnToolCall func(ToolCall) error
	OnComplete func(StreamMetadata) error
}

// ChatProvider is the interface that all model providers must implement.
type ChatProvider interface {
	// EnsureModelReady checks if a model is ready to be used and loads it if necessary.
	EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error
	// Stream runs a chat turn, executing requested tools until the model answers.
	Stream(ctx context.Context, req StreamRequest, callbacks StreamCallbacks) error
	// Close cleans up any resources used by the provider.
	Close() error
}

// RunTool executes one model-requested call with req.ToolExecutor and reports it
// through callbacks.OnToolCall. Tool failures are recorded on the returned call;
// only a callback error is returned as an error.
func RunTool(ctx context.Context, req StreamRequest, callbacks StreamCallbacks, name string, args map[string]any) (ToolCall, error) {
	call := ToolCall{Name: name, Args: args}
	if req.ToolExecutor == nil {
		call.Err = fmt.Errorf("no tool executor configured for %q", name)
	} else {
		call.Result, call.Err = req.ToolExecutor(ctx, name, args)
	}
	if callbacks.OnToolCall != nil {
		if err := callbacks.OnToolCall(call); err != nil {
			return call, err
		}
	}
	return call, nil
}
