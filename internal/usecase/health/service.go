package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Stats describes the serving corpus.
type Stats struct {
	Initialized bool   `json:"initialized"`
	Documents   int    `json:"documents"`
	Collection  string `json:"collection"`
	Model       string `json:"embedding_model"`
	Dimensions  int    `json:"embedding_dimensions"`
}

// Service coordinates health checks and corpus stats.
type Service struct {
	db         DBPinger
	embedding  EmbeddingChecker
	corpus     CorpusInfo
	collection string
	model      string
	dimensions int
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, embedding EmbeddingChecker, corpus CorpusInfo, collection, model string, dimensions int) *Service {
	return &Service{
		db:         db,
		embedding:  embedding,
		corpus:     corpus,
		collection: collection,
		model:      model,
		dimensions: dimensions,
	}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.corpus.Initialized() {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

// CorpusStats reports the serving corpus. An uninitialized corpus
// reports zero documents without touching the store.
func (s *Service) CorpusStats(ctx context.Context) Stats {
	stats := Stats{
		Initialized: s.corpus.Initialized(),
		Collection:  s.collection,
		Model:       s.model,
		Dimensions:  s.dimensions,
	}
	if !stats.Initialized {
		return stats
	}
	if count, err := s.corpus.Count(ctx); err == nil {
		stats.Documents = count
	}
	return stats
}
