package retrieve

import (
	"context"

	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/usecase/corpus"
)

// CorpusStore is the retrieval contract against the corpus.
type CorpusStore interface {
	Query(ctx context.Context, query string, f corpus.Filter, k int) ([]candidate.Candidate, error)
	ListByDataType(ctx context.Context, types []tier.DataType, limit int) ([]document.Document, error)
}
