// Package corpus is the write-and-retrieve core of the engine: it embeds
// documents and queries, stores documents behind the vector index, and
// degrades to empty results when the backing store never came up.
package corpus

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nomadmatch/nomadmatch/internal/db"
	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/metrics"
	"github.com/nomadmatch/nomadmatch/internal/repository/corpus"
)

// DefaultBatchSize is how many documents one upsert pipeline carries.
const DefaultBatchSize = 50

// Filter restricts retrieval by access tier and premium data types.
type Filter struct {
	Tier      tier.Tier
	DataTypes []tier.DataType
}

func (f Filter) tagFilters() []db.TagFilter {
	var out []db.TagFilter
	if f.Tier != "" {
		out = append(out, db.TagFilter{Field: "tier", Any: []string{string(f.Tier)}})
	}
	if len(f.DataTypes) > 0 {
		values := make([]string, len(f.DataTypes))
		for i, t := range f.DataTypes {
			values[i] = string(t)
		}
		out = append(out, db.TagFilter{Field: "data_type", Any: values})
	}
	return out
}

// Store owns the corpus lifecycle. All read paths are no-ops while the
// store is uninitialized, so an unreachable backend degrades the API
// to empty results instead of errors.
type Store struct {
	repo        Repository
	embed       Embedder
	log         *zap.Logger
	batchSize   int
	initialized atomic.Bool
}

// New creates a corpus store. Call Init before use.
func New(repo Repository, embed Embedder, log *zap.Logger) *Store {
	return &Store{repo: repo, embed: embed, log: log, batchSize: DefaultBatchSize}
}

// WithBatchSize configures the upsert batch size.
func (s *Store) WithBatchSize(size int) *Store {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// Init ensures the vector index exists and marks the store usable.
func (s *Store) Init(ctx context.Context, p corpus.IndexParams) error {
	if err := s.repo.EnsureIndex(ctx, p); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	s.initialized.Store(true)
	return nil
}

// Initialized reports whether Init succeeded.
func (s *Store) Initialized() bool {
	return s.initialized.Load()
}

// Upsert embeds and stores documents in batches. A failed batch is
// logged and skipped; the rest of the ingest continues. Returns the
// number of documents actually stored, zero when the store never
// came up.
func (s *Store) Upsert(ctx context.Context, docs []document.Document) (int, error) {
	if !s.initialized.Load() {
		s.log.Warn("upsert on uninitialized store, dropping documents",
			zap.Int("count", len(docs)))
		return 0, nil
	}

	stored := 0
	for start := 0; start < len(docs); start += s.batchSize {
		end := min(start+s.batchSize, len(docs))
		batch := docs[start:end]

		vectorized := make([]document.Document, 0, len(batch))
		for i := range batch {
			res, err := s.embed.Embed(ctx, batch[i].Text())
			if err != nil {
				s.log.Warn("embedding failed, skipping document",
					zap.String("id", batch[i].ID()), zap.Error(err))
				metrics.IngestSkippedTotal.WithLabelValues("embed_error").Inc()
				continue
			}
			batch[i].SetVector(res.Embedding)
			vectorized = append(vectorized, batch[i])
		}
		if len(vectorized) == 0 {
			continue
		}

		if err := s.repo.BatchUpsert(ctx, vectorized); err != nil {
			s.log.Warn("batch upsert failed, skipping batch",
				zap.Int("offset", start), zap.Int("size", len(vectorized)), zap.Error(err))
			metrics.IngestSkippedTotal.WithLabelValues("store_error").Add(float64(len(vectorized)))
			continue
		}
		stored += len(vectorized)
	}
	return stored, nil
}

// Count returns the number of stored documents, zero when uninitialized.
func (s *Store) Count(ctx context.Context) (int, error) {
	if !s.initialized.Load() {
		return 0, nil
	}
	return s.repo.Count(ctx)
}

// Query embeds the query text and retrieves the k nearest candidates.
// k is clamped to the corpus size. Retrieval never fails: an empty or
// uninitialized corpus, an embedding outage, or a store error all
// yield no candidates and no error.
func (s *Store) Query(ctx context.Context, query string, f Filter, k int) ([]candidate.Candidate, error) {
	if !s.initialized.Load() {
		return nil, nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		s.log.Warn("corpus count failed, returning no candidates", zap.Error(err))
		return nil, nil
	}
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		s.log.Warn("query embedding failed, returning no candidates", zap.Error(err))
		return nil, nil
	}

	cands, err := s.repo.SearchKNN(ctx, res.Embedding, f.tagFilters(), k)
	if err != nil {
		s.log.Warn("knn search failed, returning no candidates", zap.Error(err))
		return nil, nil
	}
	return cands, nil
}

// ListByDataType returns stored documents of the given premium data
// types without similarity scoring, empty when uninitialized.
func (s *Store) ListByDataType(ctx context.Context, types []tier.DataType, limit int) ([]document.Document, error) {
	if !s.initialized.Load() {
		return nil, nil
	}
	docs, err := s.repo.ListByDataType(ctx, types, limit)
	if err != nil {
		return nil, fmt.Errorf("list by data type: %w", err)
	}
	return docs, nil
}
