package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/mwiater/agents/internal/agents"
	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/knowledge"
	"github.com/mwiater/agents/internal/mcpserver"
	"github.com/mwiater/agents/internal/providers"
	"github.com/mwiater/agents/internal/tools"
)

// fakeProvider runs one tool, then streams a fixed reply.
type fakeProvider struct {
	tool    string
	reply   string
	ensured []string
	req     providers.StreamRequest
	closed  bool
}

func (p *fakeProvider) EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error {
	p.ensured = append(p.ensured, model)
	return nil
}

func (p *fakeProvider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	p.req = req
	if p.tool != "" {
		if _, err := providers.RunTool(ctx, req, callbacks, p.tool, map[string]any{}); err != nil {
			return err
		}
	}
	if err := callbacks.OnChunk(providers.ChatMessage{Role: "assistant", Content: p.reply}); err != nil {
		return err
	}
	return callbacks.OnComplete(providers.StreamMetadata{Done: true})
}

func (p *fakeProvider) Close() error {
	p.closed = true
	return nil
}

// withRuntime installs cfg, a fixed clock, a keyword embedder and provider for one test.
func withRuntime(t *testing.T, cfg *appconfig.Config, provider providers.ChatProvider, embedErr error) {
	t.Helper()
	origEmbedder, origProvider, origNow, origNoColor := newEmbedder, newChatProvider, now, color.NoColor
	origConfig := currentConfig
	t.Cleanup(func() {
		newEmbedder, newChatProvider, now, color.NoColor = origEmbedder, origProvider, origNow, origNoColor
		currentConfig = origConfig
	})

	color.NoColor = true
	currentConfig = cfg
	now = func() time.Time { return time.Date(2025, time.March, 10, 19, 5, 0, 0, time.UTC) }
	newEmbedder = func(ctx context.Context, cfg *appconfig.Config) (knowledge.Embedder, error) {
		return knowledge.EmbedderFunc(func(ctx context.Context, text string) ([]float64, error) {
			if embedErr != nil {
				return nil, embedErr
			}
			if strings.Contains(text, "EVA") {
				return []float64{1, 0}, nil
			}
			return []float64{0, 1}, nil
		}), nil
	}
	newChatProvider = func(ctx context.Context, cfg *appconfig.Config) (providers.ChatProvider, error) {
		return provider, nil
	}
}

func TestListAgents(t *testing.T) {
	withRuntime(t, &appconfig.Config{}, nil, nil)
	var buf bytes.Buffer
	if err := runListAgents(&buf); err != nil {
		t.Fatalf("runListAgents returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Agents:", "greeting_agent", "thoughtful_ai_agent", "Thoughtful AI Agent"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %s", want, out)
		}
	}
}

func TestListTools(t *testing.T) {
	withRuntime(t, &appconfig.Config{}, nil, nil)
	var buf bytes.Buffer
	if err := runListTools(&buf); err != nil {
		t.Fatalf("runListTools returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"greeting_agent get_current_time", "greeting_agent get_workshop_roadmap", "thoughtful_ai_agent search_knowledge_base"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %s", want, out)
		}
	}
}

func TestListCommands(t *testing.T) {
	var buf bytes.Buffer
	runListCommands(&buf, rootCmd)
	out := buf.String()
	if !strings.HasPrefix(out, "Commands and Subcommands:") {
		t.Fatalf("unexpected heading: %s", out)
	}
	for _, want := range []string{"agents kb search", "agents list commands", "agents tools call", "agents mcp"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %s", want, out)
		}
	}
	if strings.Contains(out, "completion") {
		t.Fatalf("completion commands should be hidden: %s", out)
	}
}

func TestKBDataset(t *testing.T) {
	var buf bytes.Buffer
	printDataset(&buf, knowledge.Dataset())
	if got := strings.Count(buf.String(), "Q: "); got != 11 {
		t.Fatalf("expected 11 questions, got %d", got)
	}
	if !strings.Contains(buf.String(), " 1. Q: ") {
		t.Fatalf("expected numbered entries, got %s", buf.String())
	}
}

func TestKBSearch(t *testing.T) {
	withRuntime(t, &appconfig.Config{}, nil, nil)
	var buf bytes.Buffer
	kbSearchCmd.SetOut(&buf)
	t.Cleanup(func() { kbSearchCmd.SetOut(nil) })

	kbSearchCmd.Run(kbSearchCmd, []string{"What", "does", "EVA", "do?"})
	if !strings.HasPrefix(buf.String(), "[Match Found (Score: 1.00)] EVA automates") {
		t.Fatalf("unexpected search output %q", buf.String())
	}
}

func TestKBSearchEmbeddingFailure(t *testing.T) {
	withRuntime(t, &appconfig.Config{}, nil, errors.New("invalid api key"))
	var buf bytes.Buffer
	kbSearchCmd.SetOut(&buf)
	t.Cleanup(func() { kbSearchCmd.SetOut(nil) })

	kbSearchCmd.Run(kbSearchCmd, []string{"EVA"})
	if !strings.HasPrefix(buf.String(), "Error searching knowledge base:") || !strings.Contains(buf.String(), "invalid api key") {
		t.Fatalf("unexpected search output %q", buf.String())
	}
}

func TestColorAnswerKeepsText(t *testing.T) {
	withRuntime(t, &appconfig.Config{}, nil, nil)
	for _, answer := range []string{
		"[Match Found (Score: 0.91)] yes",
		"[No High Confidence Match (Best Score: 0.40)] No exact match found in knowledge base.",
		"Error searching knowledge base: boom",
	} {
		if got := colorAnswer(answer); got != answer {
			t.Fatalf("colorAnswer(%q) = %q with color disabled", answer, got)
		}
	}
}

func TestToolsCall(t *testing.T) {
	withRuntime(t, &appconfig.Config{}, nil, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := runToolCall(ctx, &buf, "get_current_time", "", false); err != nil {
		t.Fatalf("runToolCall returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Monday, March 10, 2025 at 02:05 PM EST") {
		t.Fatalf("unexpected tool output %s", buf.String())
	}

	buf.Reset()
	if err := runToolCall(ctx, &buf, knowledge.ToolName, `{"query": "Tell me about EVA"}`, false); err != nil {
		t.Fatalf("runToolCall returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "[Match Found (Score: 1.00)]") {
		t.Fatalf("unexpected knowledge output %s", buf.String())
	}

	if err := runToolCall(ctx, &buf, "no_such_tool", "", false); !errors.Is(err, tools.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	if err := runToolCall(ctx, &buf, knowledge.ToolName, `{"query":`, false); !errors.Is(err, tools.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for bad JSON, got %v", err)
	}
	if err := runToolCall(ctx, &buf, knowledge.ToolName, `{}`, false); !errors.Is(err, tools.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for missing query, got %v", err)
	}
}

func TestAskStreamsAnswerAndToolNotes(t *testing.T) {
	provider := &fakeProvider{tool: "get_company_info", reply: "Welcome to the workshop!"}
	cfg := &appconfig.Config{Provider: appconfig.ProviderGemini}
	withRuntime(t, cfg, provider, nil)

	var out, errOut bytes.Buffer
	if err := runAsk(context.Background(), &out, &errOut, cfg, "Greeting Agent", "hello"); err != nil {
		t.Fatalf("runAsk returned error: %v", err)
	}
	if out.String() != "Welcome to the workshop!\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
	if !strings.Contains(errOut.String(), "Tool used: get_company_info") {
		t.Fatalf("expected tool note on stderr, got %q", errOut.String())
	}
	if len(provider.ensured) != 1 || provider.ensured[0] != agents.DefaultModel {
		t.Fatalf("expected model %s to be prepared, got %v", agents.DefaultModel, provider.ensured)
	}
	if len(provider.req.History) != 1 || provider.req.History[0].Content != "hello" {
		t.Fatalf("unexpected history %+v", provider.req.History)
	}
	if !provider.closed {
		t.Fatal("expected provider to be closed")
	}
}

func TestAskUsesChatModelOverride(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	cfg := &appconfig.Config{Provider: appconfig.ProviderGemini, ChatModel: "gemini-2.5-flash", JSONMode: true}
	withRuntime(t, cfg, provider, nil)

	var out, errOut bytes.Buffer
	if err := runAsk(context.Background(), &out, &errOut, cfg, "thoughtful_ai_agent", "hi"); err != nil {
		t.Fatalf("runAsk returned error: %v", err)
	}
	if provider.req.Model != "gemini-2.5-flash" || !provider.req.JSONMode {
		t.Fatalf("unexpected request %+v", provider.req)
	}
}

func TestAskUnknownAgent(t *testing.T) {
	cfg := &appconfig.Config{}
	withRuntime(t, cfg, &fakeProvider{}, nil)
	var out, errOut bytes.Buffer
	err := runAsk(context.Background(), &out, &errOut, cfg, "billing_agent", "hi")
	if !errors.Is(err, agents.ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestAskRejectsInvalidConfig(t *testing.T) {
	cfg := &appconfig.Config{Provider: "openai"}
	withRuntime(t, cfg, &fakeProvider{}, nil)
	var out, errOut bytes.Buffer
	if err := runAsk(context.Background(), &out, &errOut, cfg, "greeting_agent", "hi"); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestChatStartsGUI(t *testing.T) {
	provider := &fakeProvider{}
	withRuntime(t, &appconfig.Config{Provider: appconfig.ProviderGemini}, provider, nil)

	origStartGUI := startGUI
	t.Cleanup(func() { startGUI = origStartGUI })

	var gotAgent string
	var gotAgents int
	startGUI = func(ctx context.Context, cfg *appconfig.Config, catalog *agents.Catalog, p providers.ChatProvider, agentName string) error {
		gotAgent = agentName
		gotAgents = len(catalog.List())
		if p != provider {
			t.Fatalf("expected the configured provider")
		}
		return nil
	}

	if err := runChat(context.Background(), "thoughtful_ai_agent"); err != nil {
		t.Fatalf("runChat returned error: %v", err)
	}
	if gotAgent != "thoughtful_ai_agent" || gotAgents != 2 {
		t.Fatalf("unexpected startGUI call: agent=%q agents=%d", gotAgent, gotAgents)
	}
	if !provider.closed {
		t.Fatal("expected provider to be closed after the chat")
	}
}

func TestMCPCommandServesAllTools(t *testing.T) {
	withRuntime(t, &appconfig.Config{}, nil, nil)
	origServe := serveMCP
	t.Cleanup(func() { serveMCP = origServe })

	var served []string
	serveMCP = func(ctx context.Context, s *mcpserver.Server) error {
		served = s.Tools()
		return nil
	}

	if err := mcpCmd.RunE(mcpCmd, nil); err != nil {
		t.Fatalf("mcp command returned error: %v", err)
	}
	if len(served) != 4 {
		t.Fatalf("expected 4 tools served, got %v", served)
	}
}
