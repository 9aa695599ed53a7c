package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/agents/internal/appconfig"
	"github.com/mwiater/agents/internal/logging"
)

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Ollama requests embeddings from an Ollama-compatible /api/embeddings endpoint.
type Ollama struct {
	client  *http.Client
	host    appconfig.Host
	model   string
	timeout time.Duration
}

// NewOllama returns an embedder bound to one host and model.
func NewOllama(host appconfig.Host, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		client:  &http.Client{Timeout: timeout},
		host:    host,
		model:   model,
		timeout: timeout,
	}
}

// Model returns the embedding model name.
func (o *Ollama) Model() string { return o.model }

// Embed requests an embedding vector for text.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(o.model) == "" {
		return nil, fmt.Errorf("embedding model is empty")
	}
	payload := map[string]any{
		"model":  o.model,
		"prompt": text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}
	logging.LogRequest("AGENTS->EMBED", o.host.Name, o.model, "", body)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(o.host.URL, "/")+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	var parsed ollamaEmbeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response returned empty vector")
	}

	return parsed.Embedding, nil
}
