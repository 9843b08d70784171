package corpus

import (
	"context"

	"github.com/nomadmatch/nomadmatch/internal/db"
	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/repository/corpus"
)

// Repository defines the storage contract for the corpus.
type Repository interface {
	EnsureIndex(ctx context.Context, p corpus.IndexParams) error
	BatchUpsert(ctx context.Context, docs []document.Document) error
	Count(ctx context.Context) (int, error)
	SearchKNN(ctx context.Context, vector []float32, filters []db.TagFilter, k int) ([]candidate.Candidate, error)
	ListByDataType(ctx context.Context, types []tier.DataType, limit int) ([]document.Document, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
