package cli

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mwiater/agents/internal/agents"
	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/embedding"
	"github.com/mwiater/agents/internal/knowledge"
	"github.com/mwiater/agents/internal/providerfactory"
	"github.com/mwiater/agents/internal/providers"
)

var (
	// newEmbedder builds the knowledge base embedder; swapped in tests.
	newEmbedder = func(ctx context.Context, cfg *appconfig.Config) (knowledge.Embedder, error) {
		return embedding.New(ctx, cfg)
	}
	// newChatProvider builds the chat provider; swapped in tests.
	newChatProvider = providerfactory.NewChatProvider
	// now is the greeting agent's clock.
	now = time.Now
)

// lazyEmbedder defers creating the real embedder until the knowledge base is
// first searched, so commands that never search need no API key.
type lazyEmbedder struct {
	cfg *appconfig.Config

	mu       sync.Mutex
	embedder knowledge.Embedder
}

func (l *lazyEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	l.mu.Lock()
	if l.embedder == nil {
		e, err := newEmbedder(ctx, l.cfg)
		if err != nil {
			l.mu.Unlock()
			return nil, err
		}
		l.embedder = e
	}
	e := l.embedder
	l.mu.Unlock()
	return e.Embed(ctx, text)
}

// buildCatalog creates the agent catalog with a knowledge lookup over cfg's embedder.
func buildCatalog(cfg *appconfig.Config) (*agents.Catalog, *knowledge.Lookup, error) {
	if cfg == nil {
		cfg = &appconfig.Config{}
	}
	lookup := knowledge.NewLookup(&lazyEmbedder{cfg: cfg})
	catalog, err := agents.NewCatalog(agents.Options{Lookup: lookup, Now: now})
	if err != nil {
		return nil, nil, err
	}
	return catalog, lookup, nil
}

// buildChatProvider validates cfg and creates its chat provider.
func buildChatProvider(ctx context.Context, cfg *appconfig.Config) (providers.ChatProvider, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newChatProvider(ctx, cfg)
}
