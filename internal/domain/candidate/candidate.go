package candidate

import (
	"math"

	"github.com/nomadmatch/nomadmatch/internal/domain/document"
)

// Candidate is a single retrieved document with its similarity score,
// before ranking. It exists only for the duration of one query.
type Candidate struct {
	id        string
	text      string
	meta      document.Metadata
	distance  float64
	baseScore float64
}

// New creates a candidate from a retrieval hit. The base score is
// 1 - distance clamped to [0, 1] and rounded to 4 decimal places; the
// clamp keeps the ranker's 1.0 cap meaningful for backends whose
// distances stray outside the cosine [0, 2] range.
func New(id, text string, meta document.Metadata, distance float64) Candidate {
	base := 1 - distance
	if base < 0 {
		base = 0
	}
	if base > 1 {
		base = 1
	}
	return Candidate{
		id:        id,
		text:      text,
		meta:      meta,
		distance:  distance,
		baseScore: Round4(base),
	}
}

// Reconstruct creates a candidate with an explicit base score.
func Reconstruct(id, text string, meta document.Metadata, distance, baseScore float64) Candidate {
	return Candidate{id: id, text: text, meta: meta, distance: distance, baseScore: baseScore}
}

// ID returns the document identifier.
func (c *Candidate) ID() string { return c.id }

// Text returns the document text.
func (c *Candidate) Text() string { return c.text }

// Meta returns the document metadata.
func (c *Candidate) Meta() document.Metadata { return c.meta }

// Distance returns the raw vector distance from the index.
func (c *Candidate) Distance() float64 { return c.distance }

// BaseScore returns the similarity-derived score before boosting.
func (c *Candidate) BaseScore() float64 { return c.baseScore }

// Round4 rounds to 4 decimal places.
func Round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
