package gemini

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/providers"
)

// fakeStreamer replays one scripted response list per GenerateContentStream call
// and records what it was sent.
type fakeStreamer struct {
	scripts  [][]*genai.GenerateContentResponse
	err      error
	contents [][]*genai.Content
	configs  []*genai.GenerateContentConfig
	models   []string
}

func (f *fakeStreamer) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	idx := min(len(f.contents), len(f.scripts)-1)
	f.contents = append(f.contents, append([]*genai.Content(nil), contents...))
	f.configs = append(f.configs, config)
	f.models = append(f.models, model)
	script := f.scripts[idx]
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, resp := range script {
			if !yield(resp, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, &genai.Part{Text: t})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}}}
}

func callResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: &genai.Content{
		Role:  "model",
		Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{ID: "call-1", Name: name, Args: args}}},
	}}}}
}

func newTestProvider(f *fakeStreamer) *Provider {
	return &Provider{models: f, timeout: 5 * time.Second}
}

func TestStreamForwardsText(t *testing.T) {
	fake := &fakeStreamer{scripts: [][]*genai.GenerateContentResponse{{
		textResponse("Hello "),
		textResponse("there"),
		{UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 4, CandidatesTokenCount: 2}},
	}}}

	temp := 0.7
	maxTokens := 5000
	req := providers.StreamRequest{
		Model:        "gemini-2.0-flash-exp",
		SystemPrompt: "You are a greeting agent.",
		History: []providers.ChatMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
			{Role: "user", Content: "who are you?"},
		},
		Parameters:     appconfig.Parameters{Temperature: &temp, MaxOutputTokens: &maxTokens},
		SafetySettings: []providers.SafetySetting{{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_LOW_AND_ABOVE"}},
	}

	var text strings.Builder
	var meta providers.StreamMetadata
	err := newTestProvider(fake).Stream(context.Background(), req, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			text.WriteString(msg.Content)
			return nil
		},
		OnComplete: func(m providers.StreamMetadata) error {
			meta = m
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	if text.String() != "Hello there" {
		t.Fatalf("unexpected text %q", text.String())
	}
	if !meta.Done || meta.PromptEvalCount != 4 || meta.EvalCount != 2 || meta.ToolRounds != 0 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	if fake.models[0] != "gemini-2.0-flash-exp" {
		t.Fatalf("unexpected model %q", fake.models[0])
	}
	contents := fake.contents[0]
	if len(contents) != 3 || contents[0].Role != "user" || contents[1].Role != "model" || contents[2].Parts[0].Text != "who are you?" {
		t.Fatalf("unexpected contents: %+v", contents)
	}

	cfg := fake.configs[0]
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "You are a greeting agent." {
		t.Fatalf("missing system instruction: %+v", cfg.SystemInstruction)
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.7) {
		t.Fatalf("unexpected temperature: %v", cfg.Temperature)
	}
	if cfg.MaxOutputTokens != 5000 {
		t.Fatalf("unexpected max output tokens: %d", cfg.MaxOutputTokens)
	}
	if len(cfg.SafetySettings) != 1 ||
		cfg.SafetySettings[0].Category != genai.HarmCategoryDangerousContent ||
		cfg.SafetySettings[0].Threshold != genai.HarmBlockThresholdBlockLowAndAbove {
		t.Fatalf("unexpected safety settings: %+v", cfg.SafetySettings)
	}
	if len(cfg.Tools) != 0 {
		t.Fatalf("expected no tools, got %d", len(cfg.Tools))
	}
}

func TestStreamExecutesFunctionCalls(t *testing.T) {
	fake := &fakeStreamer{scripts: [][]*genai.GenerateContentResponse{
		{callResponse("search_knowledge_base", map[string]any{"query": "What is EVA?"})},
		{textResponse("EVA verifies eligibility.")},
	}}

	var reported []providers.ToolCall
	var text strings.Builder
	var meta providers.StreamMetadata
	req := providers.StreamRequest{
		Model:   "m",
		History: []providers.ChatMessage{{Role: "user", Content: "What is EVA?"}},
		Tools: []providers.ToolDefinition{{
			Name:        "search_knowledge_base",
			Description: "search",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"query": map[string]any{"type": "string"}},
				"required":   []any{"query"},
			},
		}},
		ToolExecutor: func(ctx context.Context, name string, args map[string]any) (string, error) {
			return "[Match Found (Score: 1.00)] EVA automates...", nil
		},
	}
	err := newTestProvider(fake).Stream(context.Background(), req, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			text.WriteString(msg.Content)
			return nil
		},
		OnToolCall: func(call providers.ToolCall) error {
			reported = append(reported, call)
			return nil
		},
		OnComplete: func(m providers.StreamMetadata) error {
			meta = m
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	if len(reported) != 1 || reported[0].Name != "search_knowledge_base" || reported[0].Args["query"] != "What is EVA?" {
		t.Fatalf("unexpected tool calls: %+v", reported)
	}
	if text.String() != "EVA verifies eligibility." || meta.ToolRounds != 1 {
		t.Fatalf("unexpected result %q meta %+v", text.String(), meta)
	}

	decl := fake.configs[0].Tools[0].FunctionDeclarations[0]
	if decl.Name != "search_knowledge_base" || decl.Parameters == nil || decl.Parameters.Properties["query"].Type != genai.TypeString {
		t.Fatalf("unexpected declaration: %+v", decl)
	}

	second := fake.contents[1]
	if len(second) != 3 {
		t.Fatalf("expected user, model call and function response, got %d contents", len(second))
	}
	if second[1].Role != "model" || second[1].Parts[0].FunctionCall == nil {
		t.Fatalf("expected model function call content, got %+v", second[1])
	}
	resp := second[2].Parts[0].FunctionResponse
	if second[2].Role != "user" || resp == nil || resp.ID != "call-1" || resp.Response["result"] != "[Match Found (Score: 1.00)] EVA automates..." {
		t.Fatalf("unexpected function response: %+v", second[2])
	}
}

func TestStreamReturnsToolErrorsToModel(t *testing.T) {
	fake := &fakeStreamer{scripts: [][]*genai.GenerateContentResponse{
		{callResponse("get_current_time", nil)},
		{textResponse("Sorry, no clock.")},
	}}
	req := providers.StreamRequest{
		Model: "m",
		Tools: []providers.ToolDefinition{{Name: "get_current_time"}},
		ToolExecutor: func(ctx context.Context, name string, args map[string]any) (string, error) {
			return "", errors.New("clock unavailable")
		},
	}
	if err := newTestProvider(fake).Stream(context.Background(), req, providers.StreamCallbacks{}); err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}
	resp := fake.contents[1][len(fake.contents[1])-1].Parts[0].FunctionResponse
	if resp.Response["error"] != "clock unavailable" {
		t.Fatalf("expected error response, got %+v", resp.Response)
	}
}

func TestStreamStopsAfterMaxToolRounds(t *testing.T) {
	fake := &fakeStreamer{scripts: [][]*genai.GenerateContentResponse{
		{callResponse("get_company_info", nil)},
	}}
	executions := 0
	req := providers.StreamRequest{
		Model: "m",
		Tools: []providers.ToolDefinition{{Name: "get_company_info"}},
		ToolExecutor: func(ctx context.Context, name string, args map[string]any) (string, error) {
			executions++
			return "{}", nil
		},
	}
	err := newTestProvider(fake).Stream(context.Background(), req, providers.StreamCallbacks{})
	if !errors.Is(err, providers.ErrTooManyToolRounds) {
		t.Fatalf("expected ErrTooManyToolRounds, got %v", err)
	}
	if executions != providers.MaxToolRounds || len(fake.contents) != providers.MaxToolRounds+1 {
		t.Fatalf("unexpected counts: executions=%d calls=%d", executions, len(fake.contents))
	}
}

func TestStreamPropagatesStreamErrors(t *testing.T) {
	fake := &fakeStreamer{
		scripts: [][]*genai.GenerateContentResponse{{textResponse("partial")}},
		err:     errors.New("quota exceeded"),
	}
	err := newTestProvider(fake).Stream(context.Background(), providers.StreamRequest{Model: "m"}, providers.StreamCallbacks{})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected stream error, got %v", err)
	}
}

func TestStreamCallbackErrorStops(t *testing.T) {
	fake := &fakeStreamer{scripts: [][]*genai.GenerateContentResponse{{textResponse("a"), textResponse("b")}}}
	stop := errors.New("stop")
	chunks := 0
	err := newTestProvider(fake).Stream(context.Background(), providers.StreamRequest{Model: "m"}, providers.StreamCallbacks{
		OnChunk: func(providers.ChatMessage) error {
			chunks++
			return stop
		},
	})
	if !errors.Is(err, stop) || chunks != 1 {
		t.Fatalf("expected stop after first chunk, got err=%v chunks=%d", err, chunks)
	}
}

func TestBuildConfigJSONMode(t *testing.T) {
	cfg := buildConfig(providers.StreamRequest{JSONMode: true})
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("expected JSON mime type, got %q", cfg.ResponseMIMEType)
	}
	cfg = buildConfig(providers.StreamRequest{JSONMode: true, Tools: []providers.ToolDefinition{{Name: "x"}}})
	if cfg.ResponseMIMEType != "" {
		t.Fatalf("expected no mime type with tools, got %q", cfg.ResponseMIMEType)
	}
}

func TestSchemaFromMap(t *testing.T) {
	if schemaFromMap(nil) != nil {
		t.Fatal("expected nil schema for nil map")
	}
	if schemaFromMap(map[string]any{"type": "object", "properties": map[string]any{}}) != nil {
		t.Fatal("expected nil schema for empty object")
	}

	schema := schemaFromMap(map[string]any{
		"type":        "object",
		"description": "args",
		"properties": map[string]any{
			"format": map[string]any{"type": "string", "enum": []any{"short", "long"}},
			"tags":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{"format"},
	})
	if schema.Type != genai.TypeObject || schema.Description != "args" {
		t.Fatalf("unexpected schema: %+v", schema)
	}
	if got := schema.Properties["format"].Enum; len(got) != 2 || got[1] != "long" {
		t.Fatalf("unexpected enum: %v", got)
	}
	if schema.Properties["tags"].Items == nil || schema.Properties["tags"].Items.Type != genai.TypeString {
		t.Fatalf("unexpected items: %+v", schema.Properties["tags"])
	}
	if len(schema.Required) != 1 || schema.Required[0] != "format" {
		t.Fatalf("unexpected required: %v", schema.Required)
	}
}

func TestEnsureModelReady(t *testing.T) {
	p := newTestProvider(&fakeStreamer{})
	if err := p.EnsureModelReady(context.Background(), appconfig.Host{}, ""); err == nil {
		t.Fatal("expected error for empty model")
	}
	if err := p.EnsureModelReady(context.Background(), appconfig.Host{}, "gemini-2.0-flash-exp"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
