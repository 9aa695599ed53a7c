package tui

import (
	"context"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/providers"
)

// testProvider streams fixed chunks, optionally running one tool first.
type testProvider struct {
	ensured      []string
	ensureErr    error
	toolName     string
	streamChunks []providers.ChatMessage
	lastRequest  providers.StreamRequest
}

func newTestProvider() *testProvider {
	return &testProvider{}
}

func (p *testProvider) EnsureModelReady(ctx context.Context, host appconfig.Host, model string) error {
	p.ensured = append(p.ensured, model)
	return p.ensureErr
}

func (p *testProvider) Stream(ctx context.Context, req providers.StreamRequest, callbacks providers.StreamCallbacks) error {
	p.lastRequest = req
	if p.toolName != "" {
		if _, err := providers.RunTool(ctx, req, callbacks, p.toolName, map[string]any{}); err != nil {
			return err
		}
	}
	for _, msg := range p.streamChunks {
		if callbacks.OnChunk != nil {
			if err := callbacks.OnChunk(msg); err != nil {
				return err
			}
		}
	}
	if callbacks.OnComplete != nil {
		return callbacks.OnComplete(providers.StreamMetadata{Done: true})
	}
	return nil
}

func (p *testProvider) Close() error { return nil }
