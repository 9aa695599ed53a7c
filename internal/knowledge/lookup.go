package knowledge

import (
	"context"
	"errors"
	"fmt"
)

// Threshold is the minimum similarity for a knowledge-base answer to be returned.
const Threshold = 0.70

const (
	// ToolName is the name agents use to call the lookup.
	ToolName = "search_knowledge_base"
	// ToolDescription tells the model when to use the lookup.
	ToolDescription = "Search the Thoughtful AI knowledge base for answers about products (EVA, CAM, PHIL). " +
		"This tool uses semantic matching to find precise answers from the verified Q&A dataset. " +
		"ALWAYS use this tool first when asked about Thoughtful AI products, agents, or benefits. " +
		"Returns the exact answer if a confident match is found, or a message indicating no match."
)

var (
	// ErrInitialize wraps failures while embedding the dataset.
	ErrInitialize = errors.New("initialize knowledge base")
	// ErrEmbedQuery wraps failures while embedding the query.
	ErrEmbedQuery = errors.New("embed query")
)

// Result is the outcome of a successful lookup.
type Result struct {
	Matched  bool
	Answer   string
	Question string
	Score    float64
}

// String renders the result in the form returned to agents.
func (r Result) String() string {
	if r.Matched {
		return fmt.Sprintf("[Match Found (Score: %.2f)] %s", r.Score, r.Answer)
	}
	return fmt.Sprintf("[No High Confidence Match (Best Score: %.2f)] No exact match found in knowledge base.", r.Score)
}

// FormatError renders a lookup failure in the form returned to agents.
func FormatError(err error) string {
	return fmt.Sprintf("Error searching knowledge base: %v", err)
}

// Lookup answers queries from a knowledge base.
type Lookup struct {
	base     *Base
	embedder Embedder
}

// NewLookup builds a lookup over the built-in dataset.
func NewLookup(embedder Embedder) *Lookup {
	return NewLookupWithEntries(embedder, Dataset())
}

// NewLookupWithEntries builds a lookup over a custom entry list.
func NewLookupWithEntries(embedder Embedder, entries []QAEntry) *Lookup {
	return &Lookup{base: NewBase(embedder, entries), embedder: embedder}
}

// Base exposes the underlying knowledge base.
func (l *Lookup) Base() *Base { return l.base }

// Search initializes the knowledge base if needed, embeds query and returns the
// best match judged against Threshold.
func (l *Lookup) Search(ctx context.Context, query string) (Result, error) {
	if err := l.base.Ensure(ctx); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInitialize, err)
	}

	vector, err := l.embedder.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrEmbedQuery, err)
	}

	best, score, ok := BestMatch(vector, l.base.Entries())
	return judge(best, score, ok), nil
}

// judge applies Threshold to a best match.
func judge(best EmbeddedEntry, score float64, ok bool) Result {
	result := Result{Score: score}
	if ok && score >= Threshold {
		result.Matched = true
		result.Answer = best.Answer
		result.Question = best.Question
	}
	return result
}

// Answer runs Search and always returns text: the rendered result, or the
// error message when the lookup failed.
func (l *Lookup) Answer(ctx context.Context, query string) string {
	result, err := l.Search(ctx, query)
	if err != nil {
		return FormatError(err)
	}
	return result.String()
}
