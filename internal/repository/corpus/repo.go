// Package corpus persists city documents as Redis hashes under a single
// FT index with an HNSW vector field.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nomadmatch/nomadmatch/internal/db"
	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
)

// Collection is the single corpus collection name.
const Collection = "cities"

// store is the consumer interface for the corpus (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// IndexParams tune the HNSW vector field.
type IndexParams struct {
	Dimensions  int
	M           int
	EFConstruct int
}

// Repo implements the corpus persistence layer over db.Store.
type Repo struct {
	store store
}

// New creates a corpus repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the cities FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, p IndexParams) error {
	name := indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{keyPrefix()},
		Fields: []db.IndexField{
			{Name: "tier", Type: db.IndexFieldTag},
			{Name: "data_type", Type: db.IndexFieldTag},
			{Name: "source", Type: db.IndexFieldTag},
			{
				Name:              "__vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         p.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           p.M,
				VectorEFConstruct: p.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// BatchUpsert writes vectorized documents in one pipelined round-trip.
// Document ids are deterministic, so a re-run overwrites in place.
func (r *Repo) BatchUpsert(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		items[i] = db.HashSetItem{
			Key:    docKey(docs[i].ID()),
			Fields: buildHashFields(&docs[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("batch upsert %d docs: %w", len(docs), err)
	}
	return nil
}

// Get returns a stored document by id.
func (r *Repo) Get(ctx context.Context, id string) (document.Document, error) {
	fields, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return document.Document{}, fmt.Errorf("hgetall %s: %w", id, err)
	}
	if len(fields) == 0 {
		return document.Document{}, domain.ErrDocumentNotFound
	}
	text, meta := parseHashFields(fields)
	return document.Reconstruct(id, text, meta, bytesToVector(fields["__vector"])), nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", Collection, err)
	}
	return n, nil
}

// SearchKNN retrieves the k nearest documents to the query vector,
// pre-filtered by tags. Hits carry raw cosine distances.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters []db.TagFilter, k int,
) ([]candidate.Candidate, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: indexName(),
		Filters:   filters,
		Vector:    vector,
		K:         k,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", Collection, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	out := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		text, meta := parseHashFields(entry.Fields)
		out = append(out, candidate.New(docID(entry.Key), text, meta, entry.Distance))
	}
	return out, nil
}

// ListByDataType returns up to limit documents whose data_type matches
// any of the given types, without vector scoring.
func (r *Repo) ListByDataType(
	ctx context.Context, types []tier.DataType, limit int,
) ([]document.Document, error) {
	values := make([]string, len(types))
	for i, t := range types {
		values[i] = string(t)
	}
	query := db.FilterQuery([]db.TagFilter{{Field: "data_type", Any: values}})

	sr, err := r.store.SearchList(ctx, indexName(), query, 0, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("list by data type: %w", err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	docs := make([]document.Document, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		text, meta := parseHashFields(entry.Fields)
		docs = append(docs, document.Reconstruct(docID(entry.Key), text, meta, nil))
	}
	return docs, nil
}

func keyPrefix() string {
	return domain.KeyPrefix + Collection + ":"
}

func docKey(id string) string {
	return keyPrefix() + id
}

func indexName() string {
	return keyPrefix() + "idx"
}

func docID(key string) string {
	return strings.TrimPrefix(key, keyPrefix())
}
