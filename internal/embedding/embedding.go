// Package embedding provides text embedders backed by remote embedding models.
package embedding

import (
	"context"
	"fmt"

	"github.com/mwiater/agents/internal/appconfig"
)

// Embedder turns text into a fixed-length vector with a single remote call.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// New builds the embedder selected by the configuration.
func New(ctx context.Context, cfg *appconfig.Config) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config provided to embedding factory")
	}
	switch cfg.EmbeddingProviderName() {
	case appconfig.ProviderGemini:
		return NewGemini(ctx, cfg.APIKey(), cfg.EmbeddingModelName())
	case appconfig.ProviderOllama:
		host, err := cfg.EmbeddingHostEntry()
		if err != nil {
			return nil, err
		}
		return NewOllama(host, cfg.EmbeddingModelName(), cfg.RequestTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProviderName())
	}
}
