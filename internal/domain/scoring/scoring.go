// Package scoring computes the premium visa/tax composite scores used to
// order exhaustive premium listings.
package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/nomadmatch/nomadmatch/internal/domain/document"
)

// OverallField is the metadata key carrying the composite score.
const OverallField = "overall_score"

// TaxScore rates a destination's tax regime on a 0-10 scale from the
// premium Tax_Level column. Unknown levels score the neutral midpoint.
// "very high" falls into the high bracket, it has no bracket of its own.
func TaxScore(m document.Metadata) float64 {
	level := strings.ToLower(m.ExtraValue("Tax_Level"))
	switch {
	case strings.Contains(level, "very low"):
		return 9.5
	case strings.Contains(level, "low"):
		return 8.0
	case strings.Contains(level, "moderate"):
		return 6.0
	case strings.Contains(level, "high"):
		return 3.0
	default:
		return 5.0
	}
}

// VisaScore rates visa accessibility on a 0-10 scale: a nomad visa is
// worth 8 points, adjusted by its duration class.
func VisaScore(m document.Metadata) float64 {
	if !strings.EqualFold(strings.TrimSpace(m.Visa), "yes") {
		return 2.0
	}
	score := 8.0
	duration := strings.ToLower(m.VisaDuration)
	switch {
	case strings.Contains(duration, "long-term"):
		score += 1.5
	case strings.Contains(duration, "medium-term"):
		score += 0.5
	case strings.Contains(duration, "short-term"):
		score -= 0.5
	}
	return math.Min(score, 10.0)
}

// Overall combines tax and visa scores (60/40 weighting), rounded to 2
// decimal places.
func Overall(m document.Metadata) float64 {
	v := TaxScore(m)*0.6 + VisaScore(m)*0.4
	return math.Round(v*100) / 100
}

// OverallFromMetadata reads the attached overall score, preferring the
// source's own Overall_Score column over the computed field, defaulting
// to 0 when neither is present or parseable.
func OverallFromMetadata(m document.Metadata) float64 {
	for _, key := range []string{"Overall_Score", OverallField} {
		if raw := m.ExtraValue(key); raw != "" {
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				return v
			}
		}
	}
	return 0
}
