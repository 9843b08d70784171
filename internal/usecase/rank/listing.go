package rank

import (
	"math"
	"sort"

	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
	"github.com/nomadmatch/nomadmatch/internal/domain/scoring"
)

// RankListing orders premium documents by their attached overall score,
// descending, defaulting to 0 when the field is absent or unparseable.
// Listings are premium by construction, so every entry carries the
// premium sub-object.
func RankListing(docs []document.Document) []ranked.Entry {
	entries := make([]ranked.Entry, len(docs))
	for i := range docs {
		meta := docs[i].Meta()
		overall := scoring.OverallFromMetadata(meta)
		entries[i] = ranked.Entry{
			City:     orUnknown(meta.City),
			Country:  meta.Country,
			Region:   meta.Region,
			Score:    overall,
			ScorePct: math.Round(overall*100) / 10,
			Boosts:   []string{},
			Metadata: meta.Map(),
			Premium:  ranked.NewPremiumData(meta),
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}
