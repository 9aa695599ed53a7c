package knowledge

import (
	"context"
	"fmt"
	"sync"
)

// Embedder turns text into a vector. Implementations make one remote call per
// request and report failures as errors without retrying.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbedderFunc adapts a function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, text string) ([]float64, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float64, error) {
	return f(ctx, text)
}

// Base holds the Q&A entries and, once initialized, their embeddings.
type Base struct {
	embedder Embedder
	entries  []QAEntry

	mu    sync.Mutex
	cache []EmbeddedEntry
}

// NewBase returns an uninitialized knowledge base over entries.
func NewBase(embedder Embedder, entries []QAEntry) *Base {
	return &Base{embedder: embedder, entries: entries}
}

// Ensure embeds every entry on first use. Later calls return immediately. A
// failed embedding leaves the cache empty so the next call starts over.
// Concurrent first callers wait for a single initialization.
func (b *Base) Ensure(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cache != nil {
		return nil
	}

	embedded := make([]EmbeddedEntry, 0, len(b.entries))
	for i, entry := range b.entries {
		vector, err := b.embedder.Embed(ctx, entry.Question)
		if err != nil {
			return fmt.Errorf("embed entry %d %q: %w", i, entry.Question, err)
		}
		embedded = append(embedded, EmbeddedEntry{QAEntry: entry, Embedding: vector})
	}
	b.cache = embedded
	return nil
}

// Initialized reports whether the embeddings have been computed.
func (b *Base) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache != nil
}

// Entries returns the cached embedded entries, or nil before initialization.
func (b *Base) Entries() []EmbeddedEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache
}
