// Package advice turns ranked recommendations into natural-language
// answers: a model-written briefing for premium visa and tax questions,
// and a deterministic one-liner for the chat endpoint.
package advice

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nomadmatch/nomadmatch/internal/domain/ranked"
)

const (
	contextCities = 3

	systemPrompt = "You are an expert advisor on visas and taxation for digital nomads."

	// fallbacks keep the endpoints answering when the provider is down
	// or nothing matched.
	fallbackNoData   = "No premium data matched your query."
	fallbackProvider = "Sorry, I could not generate advice right now. Please try again later."
	fallbackNoMatch  = "I couldn't find matching cities. Try different preferences."
)

// Service generates advisory text from ranked entries.
type Service struct {
	chat ChatCompleter
	log  *zap.Logger
}

// New creates the advice service.
func New(chat ChatCompleter, log *zap.Logger) *Service {
	return &Service{chat: chat, log: log}
}

// Generate asks the model for a briefing grounded on the top entries.
// Provider failures degrade to a fallback message rather than an error;
// the caller always gets displayable text.
func (s *Service) Generate(ctx context.Context, query string, entries []ranked.Entry) string {
	if len(entries) == 0 {
		return fallbackNoData
	}

	answer, err := s.chat.Complete(ctx, systemPrompt, buildPrompt(query, entries))
	if err != nil {
		s.log.Warn("advice generation failed", zap.Error(err))
		return fallbackProvider
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fallbackProvider
	}
	return answer
}

// Recommendation builds the deterministic chat reply from the top entry.
// No model call: the chat endpoint answers from ranking alone.
func Recommendation(entries []ranked.Entry) string {
	if len(entries) == 0 {
		return fallbackNoMatch
	}
	top := entries[0]

	var b strings.Builder
	fmt.Fprintf(&b, "Based on your preferences, I recommend %s, %s (%.1f%% match).",
		top.City, top.Country, top.ScorePct)
	if top.Region != "" {
		fmt.Fprintf(&b, " It's in %s", top.Region)
		if budget := metaString(top, "budget"); budget != "" {
			fmt.Fprintf(&b, " with a %s budget", strings.ToLower(budget))
		}
		b.WriteString(".")
	}
	if vibes := metaString(top, "vibe_tags"); vibes != "" {
		fmt.Fprintf(&b, " Vibes: %s.", vibes)
	}
	return b.String()
}

// buildPrompt lays out the user question plus a structured block per
// top city so the model answers from provided data only.
func buildPrompt(query string, entries []ranked.Entry) string {
	var b strings.Builder

	b.WriteString("You help digital nomads pick the best European city for their situation.\n\n")
	fmt.Fprintf(&b, "The user asks: %q\n\n", query)
	b.WriteString("Detailed data for the most relevant cities, ordered by relevance:\n")

	n := len(entries)
	if n > contextCities {
		n = contextCities
	}
	for i := 0; i < n; i++ {
		e := entries[i]
		fmt.Fprintf(&b, "\n--- City %d ---\n", i+1)
		fmt.Fprintf(&b, "City: %s, %s\n", e.City, e.Country)
		if pd := e.Premium; pd != nil {
			fmt.Fprintf(&b, "Digital nomad visa: %s\n", pd.VisaAvailable)
			fmt.Fprintf(&b, "Visa type: %s\n", pd.VisaType)
			fmt.Fprintf(&b, "Visa duration: %s\n", pd.VisaDuration)
			fmt.Fprintf(&b, "Minimum income: %v EUR/month\n", pd.VisaIncomeReqEUR)
			fmt.Fprintf(&b, "Visa score: %s/10\n", pd.VisaScore)
			fmt.Fprintf(&b, "Schengen area: %s\n", pd.Schengen)
		}
		if tax := metaString(e, "Tax_Level"); tax != "" {
			fmt.Fprintf(&b, "Tax level: %s\n", tax)
		}
		if overall := overallScore(e); overall != "" {
			fmt.Fprintf(&b, "Overall score: %s/10\n", overall)
		}
	}

	b.WriteString("\nWrite a helpful, clear answer based on this data. Compare cities where " +
		"relevant, call out strengths, and mention hard requirements such as income, stay " +
		"duration, and Schengen access. Do not invent data that is not listed. " +
		"Be concise but informative.")
	return b.String()
}

func overallScore(e ranked.Entry) string {
	if v := metaString(e, "Overall_Score"); v != "" {
		return v
	}
	return metaString(e, "overall_score")
}

func metaString(e ranked.Entry, key string) string {
	if v, ok := e.Metadata[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
		return fmt.Sprint(v)
	}
	return ""
}
