// Package retrieve gates corpus queries by access tier: free requests
// only ever see free-tier documents, premium requests see everything.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"github.com/nomadmatch/nomadmatch/internal/domain"
	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/usecase/corpus"
)

// Service handles tier-gated retrieval.
type Service struct {
	store CorpusStore
}

// New creates a retriever.
func New(store CorpusStore) *Service {
	return &Service{store: store}
}

// Retrieve returns the k nearest candidates for the query at the given
// access tier. A blank query is rejected before the store is touched.
func (s *Service) Retrieve(
	ctx context.Context, query string, t tier.Tier, k int,
) ([]candidate.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	f := corpus.Filter{}
	if t != tier.Premium {
		f.Tier = tier.Free
	}

	cands, err := s.store.Query(ctx, query, f, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return cands, nil
}

// PremiumSearch retrieves from the premium-tier documents only. It
// grounds advice generation on premium content rather than the full
// corpus.
func (s *Service) PremiumSearch(
	ctx context.Context, query string, k int,
) ([]candidate.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	f := corpus.Filter{Tier: tier.Premium}
	cands, err := s.store.Query(ctx, query, f, k)
	if err != nil {
		return nil, fmt.Errorf("premium search: %w", err)
	}
	return cands, nil
}

// SimilaritySearch is plain free-tier retrieval regardless of the
// caller's subscription.
func (s *Service) SimilaritySearch(
	ctx context.Context, query string, k int,
) ([]candidate.Candidate, error) {
	return s.Retrieve(ctx, query, tier.Free, k)
}

// PremiumListing returns the stored premium documents of the given data
// types, unranked, for exhaustive listings.
func (s *Service) PremiumListing(
	ctx context.Context, types []tier.DataType, limit int,
) ([]document.Document, error) {
	if len(types) == 0 {
		types = []tier.DataType{tier.Visa, tier.Tax}
	}
	docs, err := s.store.ListByDataType(ctx, types, limit)
	if err != nil {
		return nil, fmt.Errorf("premium listing: %w", err)
	}
	return docs, nil
}
