package ingest

import (
	"context"

	"github.com/nomadmatch/nomadmatch/internal/domain/document"
)

// Corpus is the write contract against the corpus store.
type Corpus interface {
	Upsert(ctx context.Context, docs []document.Document) (int, error)
	Count(ctx context.Context) (int, error)
}
