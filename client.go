// Package nomadmatch embeds the city recommendation engine in-process:
// connect to Redis, ingest tabular city data, and run tier-gated
// semantic queries without the HTTP server.
package nomadmatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nomadmatch/nomadmatch/internal/db"
	dbRedis "github.com/nomadmatch/nomadmatch/internal/db/redis"
	corpusrepo "github.com/nomadmatch/nomadmatch/internal/repository/corpus"
	"github.com/nomadmatch/nomadmatch/internal/usecase/corpus"
	"github.com/nomadmatch/nomadmatch/internal/usecase/ingest"
	"github.com/nomadmatch/nomadmatch/internal/usecase/rank"
	"github.com/nomadmatch/nomadmatch/internal/usecase/retrieve"
)

const defaultReadinessTimeout = 10 * time.Second

// defaultListingLimit bounds PremiumCities, matching the server's
// max_results default.
const defaultListingLimit = 100

// Client is the embedded engine entry point.
type Client struct {
	store     db.Store
	corpus    *corpus.Store
	ingester  *ingest.Service
	retriever *retrieve.Service
}

// New creates a Client, connects to the database, and ensures the
// vector index exists.
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("nomadmatch: database address required (use WithRedis)")
	}
	if cfg.embedder == nil && cfg.openaiKey == "" {
		return nil, errors.New("nomadmatch: embedder required (use WithEmbedder or WithOpenAI)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.database,
	})
	if err != nil {
		return nil, fmt.Errorf("nomadmatch: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("nomadmatch: database not ready: %w", err)
	}

	return wireClient(ctx, store, cfg)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	corpusStore := corpus.New(corpusrepo.New(store), cfg.buildEmbedder(), cfg.logger)
	if cfg.batchSize > 0 {
		corpusStore = corpusStore.WithBatchSize(cfg.batchSize)
	}
	if err := corpusStore.Init(ctx, corpusrepo.IndexParams{
		Dimensions:  cfg.dimensions,
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	}); err != nil {
		store.Close()
		return nil, fmt.Errorf("nomadmatch: init index: %w", err)
	}

	return &Client{
		store:     store,
		corpus:    corpusStore,
		ingester:  ingest.New(corpusStore, cfg.logger),
		retriever: retrieve.New(corpusStore),
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Count returns the number of stored city documents.
func (c *Client) Count(ctx context.Context) (int, error) {
	return c.corpus.Count(ctx)
}

// Ingest normalizes and stores a tabular city source read from r.
// The name's extension selects the parser (.csv or .xlsx) and its base
// name becomes the document ID prefix, so re-ingesting the same source
// overwrites in place.
func (c *Client) Ingest(ctx context.Context, name string, r io.Reader) (int, error) {
	return c.ingester.IngestReader(ctx, name, r)
}

// IngestDirs scans directories for city source files and ingests them,
// skipping entirely when the corpus already holds documents.
func (c *Client) IngestDirs(ctx context.Context, dirs ...string) (int, error) {
	return c.ingester.AutoIngest(ctx, dirs)
}

// Query retrieves and ranks cities for a free-form query.
func (c *Client) Query(ctx context.Context, query string, opts ...QueryOption) ([]Result, error) {
	qc := defaultQueryConfig()
	for _, o := range opts {
		o(qc)
	}

	cands, err := c.retriever.Retrieve(ctx, query, qc.tier, qc.topK)
	if err != nil {
		return nil, err
	}
	entries := rank.Rank(cands, qc.prefs.internal(), qc.tier)
	return toResults(entries), nil
}

// PremiumCities lists every stored premium record ordered by its
// overall score.
func (c *Client) PremiumCities(ctx context.Context) ([]Result, error) {
	docs, err := c.retriever.PremiumListing(ctx, nil, defaultListingLimit)
	if err != nil {
		return nil, err
	}
	return toResults(rank.RankListing(docs)), nil
}
