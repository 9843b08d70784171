// Package ingest turns tabular city sources into indexed documents:
// uploaded files on demand, bundled data directories at startup.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nomadmatch/nomadmatch/internal/metrics"
	"github.com/nomadmatch/nomadmatch/internal/normalize"
	"github.com/nomadmatch/nomadmatch/internal/tabular"
)

// Service handles row normalization and corpus writes.
type Service struct {
	corpus Corpus
	log    *zap.Logger
}

// New creates an ingestion service.
func New(corpus Corpus, log *zap.Logger) *Service {
	return &Service{corpus: corpus, log: log}
}

// Ingest normalizes rows under the given source label and writes them
// to the corpus. Returns the number of documents actually stored.
func (s *Service) Ingest(ctx context.Context, rows []tabular.Row, sourceLabel string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	docs := normalize.NormalizeAll(rows, sourceLabel)
	stored, err := s.corpus.Upsert(ctx, docs)
	if err != nil {
		return stored, fmt.Errorf("ingest %s: %w", sourceLabel, err)
	}
	metrics.IngestDocumentsTotal.WithLabelValues(sourceLabel).Add(float64(stored))
	s.log.Info("source ingested",
		zap.String("source", sourceLabel),
		zap.Int("rows", len(rows)),
		zap.Int("stored", stored))
	return stored, nil
}

// IngestReader parses an uploaded file (CSV or XLSX, by extension of
// name) and ingests its rows under the file name as source label.
func (s *Service) IngestReader(ctx context.Context, name string, r io.Reader) (int, error) {
	rows, err := tabular.Read(name, r)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return s.Ingest(ctx, rows, name)
}

// AutoIngest loads every CSV/XLSX file from the data directories when
// the corpus is empty. A non-empty corpus is left untouched; per-file
// failures are logged and skipped.
func (s *Service) AutoIngest(ctx context.Context, dirs []string) (int, error) {
	count, err := s.corpus.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count corpus: %w", err)
	}
	if count > 0 {
		s.log.Info("corpus already populated, skipping auto-ingest", zap.Int("count", count))
		return 0, nil
	}

	total := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.log.Warn("data directory unreadable, skipping", zap.String("dir", dir), zap.Error(err))
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !isSourceFile(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			stored, err := s.ingestFile(ctx, path)
			if err != nil {
				s.log.Warn("source file skipped", zap.String("path", path), zap.Error(err))
				continue
			}
			total += stored
		}
	}
	s.log.Info("auto-ingest finished", zap.Int("stored", total))
	return total, nil
}

func (s *Service) ingestFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.IngestReader(ctx, filepath.Base(path), f)
}

func isSourceFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
