// internal/providers/ollama/provider.go
// Package ollama provides a ChatProvider backed by Ollama-compatible HTTP endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/logging"
	"github.com/mwiater/agents/internal/providers"
)

// noToolCapabilityReply is shown when the host rejects a request because the model cannot call tools.
const noToolCapabilityReply = "This model does not have tool capabilities."

// Provider implements the providers.ChatProvider interface using Ollama HTTP APIs.
type Provider struct {
	client  *http.Client
	timeout time.Duration
	debug   bool
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		timeout: timeout,
		debug:   cfg.Debug,
	}
}

// chatMessage is a message in the /api/chat wire format.
type chatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
}

// streamChunk defines the structure of a single chunk in a streaming response.
type streamChunk struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	TotalDuration   int64       `json:"total_duration"`
	PromptEvalCount int         `json:"prompt_eval_count"`
	EvalCount       int         `json:"eval_count"`
}

// EnsureModelReady triggers a lightweight generate request to make sure the model is loaded.
func (p *Provider) EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error {
	body, err := json.Marshal(map[string]any{"model": model})
	if err != nil {
		return err
	}
	logging.LogRequest("AGENTS->LLM", hostIdentifier(host), model, "", body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host.URL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("LLM->AGENTS", hostIdentifier(host), model, "", respBody)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// Stream issues chat requests and forwards output to the provided callbacks. When the
// model asks for tools, they are executed and the model is called again with the results,
// up to providers.MaxToolRounds times.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	messages := make([]chatMessage, 0, len(req.History)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, msg := range req.History {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	logTools(p.debug, req.Tools)

	for round := 0; ; round++ {
		final, calls, err := p.chatOnce(ctx, req, messages, callbacks)
		if err != nil {
			if errors.Is(err, errNoToolCapability) {
				return p.replyNoToolCapability(req, callbacks)
			}
			return err
		}

		if len(calls) == 0 {
			if callbacks.OnComplete == nil {
				return nil
			}
			modelName := final.Model
			if modelName == "" {
				modelName = req.Model
			}
			return callbacks.OnComplete(providers.StreamMetadata{
				Model:           modelName,
				CreatedAt:       time.Now(),
				Done:            final.Done,
				TotalDuration:   final.TotalDuration,
				PromptEvalCount: final.PromptEvalCount,
				EvalCount:       final.EvalCount,
				ToolRounds:      round,
			})
		}

		if round >= providers.MaxToolRounds {
			return fmt.Errorf("ollama: %w (%d)", providers.ErrTooManyToolRounds, providers.MaxToolRounds)
		}

		messages = append(messages, chatMessage{Role: "assistant", Content: final.Message.Content, ToolCalls: calls})
		toolMessages, err := executeToolCalls(ctx, req, callbacks, calls)
		if err != nil {
			return err
		}
		messages = append(messages, toolMessages...)
	}
}

var errNoToolCapability = errors.New("model does not support tools")

// chatOnce performs a single /api/chat exchange. Text is forwarded to OnChunk as it
// arrives; tool calls from every chunk are collected and returned.
func (p *Provider) chatOnce(ctx context.Context, req providers.StreamRequest, messages []chatMessage, callbacks providers.StreamCallbacks) (streamChunk, []toolCall, error) {
	hostID := hostIdentifier(req.Host)
	payload := map[string]any{
		"model":    req.Model,
		"messages": messages,
		"options":  buildOptions(req.Parameters),
		"stream":   !req.DisableStreaming,
	}
	if len(req.Tools) > 0 {
		payload["tools"] = formatToolsForPayload(req.Tools)
	}
	if req.JSONMode {
		payload["format"] = "json"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return streamChunk{}, nil, err
	}
	if pretty, perr := json.MarshalIndent(payload, "", "  "); perr == nil {
		logging.LogRequest("AGENTS->LLM", hostID, req.Model, "", pretty)
	} else {
		logging.LogRequest("AGENTS->LLM", hostID, req.Model, "", body)
	}

	streamCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(streamCtx, http.MethodPost, req.Host.URL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return streamChunk{}, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return streamChunk{}, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		logging.LogRequest("LLM->AGENTS", hostID, req.Model, "", raw)
		if len(req.Tools) > 0 && isNoToolCapabilityResponse(raw) {
			return streamChunk{}, nil, errNoToolCapability
		}
		return streamChunk{}, nil, fmt.Errorf("ollama: /api/chat returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	// A non-streaming reply is a single object, which the decoder loop reads as one chunk.
	decoder := json.NewDecoder(resp.Body)
	var final streamChunk
	var calls []toolCall
	for {
		var chunk streamChunk
		if err := decoder.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return streamChunk{}, nil, err
		}
		if data, err := json.Marshal(chunk); err == nil {
			logging.LogRequest("LLM->AGENTS", hostID, req.Model, "", data)
		}

		calls = append(calls, chunk.Message.ToolCalls...)
		final.Message.Content += chunk.Message.Content

		if callbacks.OnChunk != nil && chunk.Message.Content != "" {
			role := chunk.Message.Role
			if role == "" {
				role = "assistant"
			}
			if err := callbacks.OnChunk(providers.ChatMessage{Role: role, Content: chunk.Message.Content}); err != nil {
				return streamChunk{}, nil, err
			}
		}

		if chunk.Done {
			content := final.Message.Content
			final = chunk
			final.Message.Content = content
			break
		}
	}
	return final, calls, nil
}

func (p *Provider) replyNoToolCapability(req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	if callbacks.OnChunk != nil {
		if err := callbacks.OnChunk(providers.ChatMessage{Role: "assistant", Content: noToolCapabilityReply}); err != nil {
			return err
		}
	}
	if callbacks.OnComplete != nil {
		return callbacks.OnComplete(providers.StreamMetadata{Model: req.Model, CreatedAt: time.Now(), Done: true})
	}
	return nil
}

func buildOptions(params appconfig.Parameters) map[string]any {
	options := map[string]any{}
	if params.TopK != nil {
		options["top_k"] = *params.TopK
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.MaxOutputTokens != nil {
		options["num_predict"] = *params.MaxOutputTokens
	}
	if params.RepeatPenalty != nil {
		options["repeat_penalty"] = *params.RepeatPenalty
	}
	return options
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}
