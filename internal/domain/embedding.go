package domain

import "context"

// KeyPrefix namespaces all Redis keys written by this service.
const KeyPrefix = "nomadmatch:"

// EmbeddingResult holds the vector and token usage from an embedding call.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker is implemented by providers that can verify availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
