package embedding

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/mwiater/agents/internal/logging"
)

// contentEmbedder is the subset of genai.Models used for embeddings.
type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Gemini requests embeddings from the Gemini API.
type Gemini struct {
	models contentEmbedder
	model  string
}

// NewGemini creates a Gemini API client for the given key and embedding model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini embeddings: GOOGLE_API_KEY not found in environment")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: create client: %w", err)
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Model returns the embedding model name.
func (g *Gemini) Model() string { return g.model }

// Embed returns the embedding of text as float64 values.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float64, error) {
	logging.LogRequest("AGENTS->EMBED", "gemini", g.model, "", text)
	res, err := g.models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}
	if res == nil || len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, fmt.Errorf("gemini embed content: response contained no embeddings")
	}
	values := res.Embeddings[0].Values
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = float64(v)
	}
	return vector, nil
}
