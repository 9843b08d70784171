// Package rank turns retrieval candidates into a final ordered result
// list by applying deterministic additive preference boosts. It is a
// pure function of its inputs: no I/O, no state.
package rank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nomadmatch/nomadmatch/internal/domain/candidate"
	"github.com/nomadmatch/nomadmatch/internal/domain/profile"
	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
)

// Boost amounts. Budget and climate are exclusive within their category
// (first matching rule wins); all categories stack with each other.
const (
	boostVisa        = 0.30
	boostInternet    = 0.15
	boostBudgetExact = 0.30
	boostBudgetNear  = 0.20
	boostBudgetLoose = 0.10
	boostClimate     = 0.15
	boostSafety      = 0.05
	boostFamily      = 0.10
	boostNightlife   = 0.10
	boostPerVibe     = 0.05
	boostVibeCap     = 0.15
	maxScore         = 1.0
)

// Rank scores candidates against the preference profile and returns
// entries in descending score order. Ties keep the input order. The
// premium_data sub-object is attached only for premium requests.
func Rank(cands []candidate.Candidate, prefs profile.Profile, t tier.Tier) []ranked.Entry {
	entries := make([]ranked.Entry, len(cands))
	for i := range cands {
		entries[i] = score(&cands[i], prefs, t)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

func score(c *candidate.Candidate, prefs profile.Profile, t tier.Tier) ranked.Entry {
	meta := c.Meta()
	total := c.BaseScore()
	var boosts []string

	apply := func(name string, amount float64) {
		total += amount
		boosts = append(boosts, fmt.Sprintf("%s:+%.2f", name, amount))
	}

	if eq(prefs.Visa, "Yes") && eq(meta.Visa, "Yes") {
		apply("visa", boostVisa)
	}
	if eq(meta.Internet, "Excellent") {
		apply("internet", boostInternet)
	}
	if amount, ok := budgetBoost(prefs.Budget, meta.Budget); ok {
		apply("budget_match", amount)
	}
	if climateMatch(prefs.Climate, meta.SummerTemp) {
		apply("climate", boostClimate)
	}
	if eq(meta.Safety, "Excellent") {
		apply("safety", boostSafety)
	}
	if eq(prefs.Family, "Yes") && in(meta.Family, "Good", "Excellent") {
		apply("family", boostFamily)
	}
	if eq(prefs.Nightlife, "Yes") && in(meta.Nightlife, "Good", "Excellent") {
		apply("nightlife", boostNightlife)
	}
	if n := vibeMatches(prefs.VibeTags(), meta.VibeTags); n > 0 {
		amount := math.Min(float64(n)*boostPerVibe, boostVibeCap)
		total += amount
		boosts = append(boosts, fmt.Sprintf("vibes(%d):+%.2f", n, amount))
	}

	final := candidate.Round4(math.Min(total, maxScore))

	entry := ranked.Entry{
		City:      orUnknown(meta.City),
		Country:   meta.Country,
		Region:    meta.Region,
		Score:     final,
		ScorePct:  math.Round(final*1000) / 10,
		BaseScore: c.BaseScore(),
		Boosts:    boosts,
		Metadata:  meta.Map(),
	}
	if t == tier.Premium {
		entry.Premium = ranked.NewPremiumData(meta)
	}
	return entry
}

// budgetBoost picks the single highest matching budget rule.
func budgetBoost(pref, budget string) (float64, bool) {
	switch {
	case eq(pref, "Very Affordable") && eq(budget, "Very Affordable"):
		return boostBudgetExact, true
	case eq(pref, "Affordable") && in(budget, "Affordable", "Very Affordable"):
		return boostBudgetNear, true
	case eq(pref, "Moderate") && in(budget, "Moderate", "Affordable"):
		return boostBudgetLoose, true
	}
	return 0, false
}

// climateMatch picks the single matching climate rule.
func climateMatch(pref, summer string) bool {
	switch {
	case eq(pref, "Warm"):
		return in(summer, "Warm", "Hot")
	case eq(pref, "Mild"):
		return eq(summer, "Mild")
	}
	return false
}

// vibeMatches counts preference vibes appearing as substrings of the
// document's vibe-tag string.
func vibeMatches(prefVibes []string, vibeTags string) int {
	if len(prefVibes) == 0 || vibeTags == "" {
		return 0
	}
	haystack := strings.ToLower(vibeTags)
	n := 0
	for _, v := range prefVibes {
		if strings.Contains(haystack, v) {
			n++
		}
	}
	return n
}

func eq(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}

func in(v string, options ...string) bool {
	for _, o := range options {
		if eq(v, o) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
