// Package normalize turns raw tabular city rows into corpus documents:
// a deterministic id, a stable embedding text, and structured metadata.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nomadmatch/nomadmatch/internal/domain/document"
	"github.com/nomadmatch/nomadmatch/internal/domain/scoring"
	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
	"github.com/nomadmatch/nomadmatch/internal/tabular"
)

// commonFields maps source column names to their flat metadata keys.
// Lookup is case-insensitive; columns absent from a source are skipped.
var commonFields = []struct {
	column string
	assign func(*document.Metadata, string)
}{
	{"Monthly_Budget_Single", func(m *document.Metadata, v string) { m.Budget = v }},
	{"Internet_Reliability_Score", func(m *document.Metadata, v string) { m.Internet = v }},
	{"Digital_Nomad_Visa", func(m *document.Metadata, v string) { m.Visa = v }},
	{"Visa_Score", func(m *document.Metadata, v string) { m.VisaScore = v }},
	{"Visa_Type", func(m *document.Metadata, v string) { m.VisaType = v }},
	{"Visa_Duration", func(m *document.Metadata, v string) { m.VisaDuration = v }},
	{"Schengen", func(m *document.Metadata, v string) { m.Schengen = v }},
	{"Summer_Temperature", func(m *document.Metadata, v string) { m.SummerTemp = v }},
	{"Winter_Temperature", func(m *document.Metadata, v string) { m.WinterTemp = v }},
	{"Safety_Score", func(m *document.Metadata, v string) { m.Safety = v }},
	{"Nightlife_Score", func(m *document.Metadata, v string) { m.Nightlife = v }},
	{"Family_Friendly_Score", func(m *document.Metadata, v string) { m.Family = v }},
	{"Startup_Scene_Score", func(m *document.Metadata, v string) { m.Startup = v }},
	{"Coworking_Availability", func(m *document.Metadata, v string) { m.Coworking = v }},
	{"Vibe_Tags", func(m *document.Metadata, v string) { m.VibeTags = v }},
	{"Expat_Community_Size", func(m *document.Metadata, v string) { m.ExpatSize = v }},
	{"English_Proficiency_Score", func(m *document.Metadata, v string) { m.English = v }},
	{"Outdoor_Activities_Score", func(m *document.Metadata, v string) { m.Outdoor = v }},
	{"Sunshine_Level", func(m *document.Metadata, v string) { m.Sunshine = v }},
}

var numericFields = []struct {
	column string
	assign func(*document.Metadata, document.Num)
}{
	{"Monthly_Budget_Single_EUR", func(m *document.Metadata, n document.Num) { m.BudgetEUR = n }},
	{"Coworking_Monthly_EUR", func(m *document.Metadata, n document.Num) { m.CoworkingEUR = n }},
	{"Airbnb_Avg_Monthly_EUR", func(m *document.Metadata, n document.Num) { m.AirbnbEUR = n }},
	{"Population", func(m *document.Metadata, n document.Num) { m.Population = n }},
	{"Visa_Income_Req_EUR", func(m *document.Metadata, n document.Num) { m.VisaIncomeReq = n }},
}

// identity columns are already captured as structured fields and never
// duplicated into the extension map.
var identityColumns = map[string]struct{}{
	"city":    {},
	"country": {},
	"region":  {},
	"tier":    {},
}

// Normalize builds a Document from one source row. It never fails: blank
// cells are skipped, malformed numbers fall back to their raw strings.
//
// The id "<label>_<index>" is deterministic so re-ingesting a source file
// overwrites rather than duplicates.
func Normalize(row tabular.Row, sourceLabel string, rowIndex int) document.Document {
	id := fmt.Sprintf("%s_%d", sourceLabel, rowIndex)

	meta := document.Metadata{
		Source: sourceLabel,
		City:   strings.TrimSpace(row.Lookup("city")),
		Extra:  map[string]string{"row_index": strconv.Itoa(rowIndex)},
	}
	meta.Country = strings.TrimSpace(row.Lookup("country"))
	meta.Region = strings.TrimSpace(row.Lookup("region"))

	t, dt, ok := tier.ClassifySource(sourceLabel)
	if !ok {
		t = tier.Parse(row.Lookup("tier"))
		dt = tier.ParseDataType(row.Lookup("data_type"))
	}
	meta.Tier = t
	meta.DataType = dt

	for _, cf := range commonFields {
		if v := strings.TrimSpace(row.Lookup(cf.column)); v != "" {
			cf.assign(&meta, v)
		}
	}
	for _, nf := range numericFields {
		if v := strings.TrimSpace(row.Lookup(nf.column)); v != "" {
			nf.assign(&meta, document.NumOf(v))
		}
	}

	if t == tier.Premium {
		for _, col := range row.Columns() {
			if _, skip := identityColumns[strings.ToLower(col)]; skip {
				continue
			}
			if v := strings.TrimSpace(row.Get(col)); v != "" {
				meta.Extra[col] = v
			}
		}
		if meta.ExtraValue("Overall_Score") == "" {
			meta.Extra[scoring.OverallField] = strconv.FormatFloat(scoring.Overall(meta), 'f', -1, 64)
		}
	}

	return document.New(id, embeddingText(row), meta)
}

// embeddingText serializes a row as "col: value" pairs joined with " | ",
// in column declaration order, skipping blank cells. Column order is part
// of the contract: the same row always embeds to the same text.
func embeddingText(row tabular.Row) string {
	parts := make([]string, 0, row.Len())
	for _, col := range row.Columns() {
		v := strings.TrimSpace(row.Get(col))
		if v == "" {
			continue
		}
		parts = append(parts, col+": "+v)
	}
	return strings.Join(parts, " | ")
}

// NormalizeAll converts every row of a source file in order.
func NormalizeAll(rows []tabular.Row, sourceLabel string) []document.Document {
	docs := make([]document.Document, 0, len(rows))
	for i, row := range rows {
		docs = append(docs, Normalize(row, sourceLabel, i))
	}
	return docs
}
