package nomadmatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/transport/openai"
	"github.com/nomadmatch/nomadmatch/internal/usecase/corpus"
)

// EmbeddingResult holds the vector and token usage from an embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text. Implement it to plug in a custom provider,
// or use WithOpenAI.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	username string
	password string
	database int

	embedder    Embedder
	openaiKey   string
	openaiModel string
	dimensions  int

	hnswM           int
	hnswEFConstruct int
	batchSize       int

	logger *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		dimensions: 1536,
		batchSize:  corpus.DefaultBatchSize,
		logger:     zap.NewNop(),
	}
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) { c.addrs = addrs }
}

// WithCredentials sets the database username and password.
func WithCredentials(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithDB selects a logical Redis database.
func WithDB(db int) Option {
	return func(c *clientConfig) { c.database = db }
}

// WithEmbedder plugs in a custom embedding provider.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithOpenAI configures the bundled OpenAI embedder.
func WithOpenAI(apiKey, model string) Option {
	return func(c *clientConfig) {
		c.openaiKey = apiKey
		c.openaiModel = model
	}
}

// WithDimensions sets the embedding vector dimensionality.
func WithDimensions(d int) Option {
	return func(c *clientConfig) { c.dimensions = d }
}

// WithHNSW tunes the vector index construction parameters.
func WithHNSW(m, efConstruct int) Option {
	return func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	}
}

// WithBatchSize sets how many documents one upsert pipeline carries.
func WithBatchSize(size int) Option {
	return func(c *clientConfig) { c.batchSize = size }
}

// WithLogger attaches a zap logger. Logging is off by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// buildEmbedder resolves the configured embedder: a custom Embedder
// wins over the bundled OpenAI provider. Returns nil when neither is
// configured.
func (c *clientConfig) buildEmbedder() domain.Embedder {
	if c.embedder != nil {
		return &embedderAdapter{inner: c.embedder}
	}
	if c.openaiKey != "" {
		return openai.NewEmbedder(&openai.Config{
			APIKey:     c.openaiKey,
			Model:      c.openaiModel,
			Dimensions: c.dimensions,
			Logger:     c.logger,
		})
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
