// Package capability provides injected handles for the generative-text and
// embedding capabilities, backed by any OpenAI-compatible endpoint.
//
// The handles are constructed once and passed explicitly to the systems
// that need them, so tests can substitute fakes without process-wide state.
package capability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/arboretica/lore/pkg/vector"
)

// CompleteOptions bounds a single text-generation call.
type CompleteOptions struct {
	MaxTokens   int
	Temperature float64
}

// Completer produces text from a system instruction and user content.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts CompleteOptions) (string, error)
}

// Embedder converts text into a fixed-length vector. Dimension reports the
// process-wide embedding dimensionality; all stored vectors share it.
type Embedder interface {
	Embed(ctx context.Context, text string) (vector.Vector, error)
	Dimension() int
}

// System combines the generative-text and embedding capabilities.
type System interface {
	Completer
	Embedder
}

type client struct {
	llm       *openai.LLM
	embedder  *embeddings.EmbedderImpl
	dimension int
	timeout   time.Duration
}

// New creates a capability System from the given configuration.
// Both completion and embedding calls go through the same provider client.
func New(cfg *Config) (System, error) {
	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.token()),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create capability client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &client{
		llm:       llm,
		embedder:  embedder,
		dimension: cfg.Dimension,
		timeout:   cfg.TimeoutDuration(),
	}, nil
}

func (c *client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *client) Complete(ctx context.Context, system, user string, opts CompleteOptions) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	callOpts := []llms.CallOption{}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	}

	resp, err := c.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func (c *client) Embed(ctx context.Context, text string) (vector.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding call: %w", err)
	}
	if len(vec) != c.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWrongDimension, len(vec), c.dimension)
	}

	return vector.Vector(vec), nil
}

func (c *client) Dimension() int {
	return c.dimension
}
