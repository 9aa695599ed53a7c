// internal/providers/gemini/provider.go
// Package gemini provides a ChatProvider backed by the Gemini API through google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/logging"
	"github.com/mwiater/agents/internal/providers"
)

// contentStreamer is the subset of genai.Models used for chat.
type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Provider implements providers.ChatProvider using the Gemini API.
type Provider struct {
	models  contentStreamer
	timeout time.Duration
	debug   bool
}

// New creates a Gemini client from the configured API key.
func New(ctx context.Context, cfg *appconfig.Config) (*Provider, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, errors.New("gemini: GOOGLE_API_KEY not found in environment")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Provider{models: client.Models, timeout: cfg.RequestTimeout(), debug: cfg.Debug}, nil
}

// EnsureModelReady only checks that a model was named; hosted models need no warm-up.
func (p *Provider) EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error {
	if strings.TrimSpace(model) == "" {
		return errors.New("gemini: model name is required")
	}
	return nil
}

// Stream sends the conversation to Gemini and forwards text as it streams. Function
// calls are executed with req.ToolExecutor and their results sent back, up to
// providers.MaxToolRounds times.
func (p *Provider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := historyContents(req.History)
	config := buildConfig(req)
	meta := providers.StreamMetadata{Model: req.Model}
	started := time.Now()
	if p.debug {
		logging.LogEvent("gemini: model=%s tools=%d safety=%d", req.Model, len(req.Tools), len(req.SafetySettings))
	}

	for round := 0; ; round++ {
		logging.LogRequest("AGENTS->LLM", "gemini", req.Model, "", contents)

		var modelParts []*genai.Part
		var calls []*genai.FunctionCall
		for resp, err := range p.models.GenerateContentStream(ctx, req.Model, contents, config) {
			if err != nil {
				return fmt.Errorf("gemini: generate content: %w", err)
			}
			logging.LogRequest("LLM->AGENTS", "gemini", req.Model, "", resp)
			if resp.ModelVersion != "" {
				meta.Model = resp.ModelVersion
			}
			if usage := resp.UsageMetadata; usage != nil {
				meta.PromptEvalCount = int(usage.PromptTokenCount)
				meta.EvalCount += int(usage.CandidatesTokenCount)
			}
			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part == nil {
					continue
				}
				modelParts = append(modelParts, part)
				if part.FunctionCall != nil {
					calls = append(calls, part.FunctionCall)
					continue
				}
				if part.Text == "" || part.Thought {
					continue
				}
				if callbacks.OnChunk != nil {
					if err := callbacks.OnChunk(providers.ChatMessage{Role: "assistant", Content: part.Text}); err != nil {
						return err
					}
				}
			}
		}

		if len(calls) == 0 {
			if callbacks.OnComplete == nil {
				return nil
			}
			meta.CreatedAt = time.Now()
			meta.Done = true
			meta.TotalDuration = time.Since(started).Nanoseconds()
			meta.ToolRounds = round
			return callbacks.OnComplete(meta)
		}

		if round >= providers.MaxToolRounds {
			return fmt.Errorf("gemini: %w (%d)", providers.ErrTooManyToolRounds, providers.MaxToolRounds)
		}

		contents = append(contents, &genai.Content{Role: string(genai.RoleModel), Parts: modelParts})
		responses := make([]*genai.Part, 0, len(calls))
		for _, fc := range calls {
			call, err := providers.RunTool(ctx, req, callbacks, fc.Name, fc.Args)
			if err != nil {
				return err
			}
			responses = append(responses, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       fc.ID,
				Name:     fc.Name,
				Response: call.Response(),
			}})
		}
		contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: responses})
	}
}

// Close releases any resources held by the provider.
func (p *Provider) Close() error {
	return nil
}

// historyContents maps chat history onto Gemini's user/model roles.
func historyContents(history []providers.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := string(genai.RoleUser)
		if msg.Role == "assistant" || msg.Role == "model" {
			role = string(genai.RoleModel)
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []*genai.Part{{Text: msg.Content}}})
	}
	return contents
}

// buildConfig maps the request's prompt, parameters, safety settings and tools onto genai.
func buildConfig(req providers.StreamRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}

	params := req.Parameters
	if params.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*params.Temperature))
	}
	if params.TopK != nil {
		config.TopK = genai.Ptr(float32(*params.TopK))
	}
	if params.TopP != nil {
		config.TopP = genai.Ptr(float32(*params.TopP))
	}
	if params.MaxOutputTokens != nil {
		config.MaxOutputTokens = int32(*params.MaxOutputTokens)
	}

	for _, s := range req.SafetySettings {
		config.SafetySettings = append(config.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  schemaFromMap(tool.Parameters),
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	} else if req.JSONMode {
		config.ResponseMIMEType = "application/json"
	}
	return config
}
