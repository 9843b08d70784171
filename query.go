package nomadmatch

import (
	"github.com/nomadmatch/nomadmatch/internal/domain/profile"
	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
)

// Preferences bias the ranking toward the caller's lifestyle. All
// fields are optional.
type Preferences struct {
	Visa      string
	Budget    string
	Climate   string
	Family    string
	Nightlife string
	Vibes     []string
}

func (p Preferences) internal() profile.Profile {
	return profile.Profile{
		Visa:      p.Visa,
		Budget:    p.Budget,
		Climate:   p.Climate,
		Family:    p.Family,
		Nightlife: p.Nightlife,
		Vibes:     p.Vibes,
	}
}

// PremiumData carries visa and residency fields, attached only on
// premium queries.
type PremiumData struct {
	VisaAvailable    string
	VisaType         string
	VisaDuration     string
	VisaIncomeReqEUR any
	VisaScore        string
	Schengen         string
}

// Result is one ranked city recommendation.
type Result struct {
	City      string
	Country   string
	Region    string
	Score     float64
	ScorePct  float64
	BaseScore float64
	Boosts    []string
	Metadata  map[string]any
	Premium   *PremiumData
}

// QueryOption configures a single query.
type QueryOption func(*queryConfig)

type queryConfig struct {
	tier  tier.Tier
	topK  int
	prefs Preferences
}

func defaultQueryConfig() *queryConfig {
	return &queryConfig{tier: tier.Free, topK: 15}
}

// Premium runs the query at the premium tier: the whole corpus is
// searched and results carry premium visa data.
func Premium() QueryOption {
	return func(q *queryConfig) { q.tier = tier.Premium }
}

// TopK sets how many candidates to retrieve.
func TopK(k int) QueryOption {
	return func(q *queryConfig) {
		if k > 0 {
			q.topK = k
		}
	}
}

// WithPreferences applies boost scoring preferences.
func WithPreferences(p Preferences) QueryOption {
	return func(q *queryConfig) { q.prefs = p }
}

func toResults(entries []ranked.Entry) []Result {
	out := make([]Result, len(entries))
	for i, e := range entries {
		out[i] = Result{
			City:      e.City,
			Country:   e.Country,
			Region:    e.Region,
			Score:     e.Score,
			ScorePct:  e.ScorePct,
			BaseScore: e.BaseScore,
			Boosts:    e.Boosts,
			Metadata:  e.Metadata,
		}
		if e.Premium != nil {
			out[i].Premium = &PremiumData{
				VisaAvailable:    e.Premium.VisaAvailable,
				VisaType:         e.Premium.VisaType,
				VisaDuration:     e.Premium.VisaDuration,
				VisaIncomeReqEUR: e.Premium.VisaIncomeReqEUR,
				VisaScore:        e.Premium.VisaScore,
				Schengen:         e.Premium.Schengen,
			}
		}
	}
	return out
}
