package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusInfo exposes the corpus state for stats reporting.
type CorpusInfo interface {
	Initialized() bool
	Count(ctx context.Context) (int, error)
}
