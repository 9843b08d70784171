package document

import (
	"strconv"
	"strings"

	"github.com/nomadmatch/nomadmatch/internal/domain/tier"
)

// Num is an integer metadata value that keeps the raw source string when
// coercion fails, so malformed cells degrade instead of being dropped.
type Num struct {
	raw string
	val int
	num bool
}

// NumOf coerces a source cell to an integer Num. Decimal strings are
// truncated; anything unparseable is kept verbatim.
func NumOf(s string) Num {
	s = strings.TrimSpace(s)
	if s == "" {
		return Num{}
	}
	if v, err := strconv.Atoi(s); err == nil {
		return Num{raw: s, val: v, num: true}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Num{raw: s, val: int(f), num: true}
	}
	return Num{raw: s}
}

// NumFromInt creates a Num from a known-good integer.
func NumFromInt(v int) Num {
	return Num{raw: strconv.Itoa(v), val: v, num: true}
}

// IsZero reports whether the source cell was empty.
func (n Num) IsZero() bool { return n.raw == "" }

// IsInt reports whether coercion succeeded.
func (n Num) IsInt() bool { return n.num }

// Int returns the coerced value, 0 when coercion failed.
func (n Num) Int() int { return n.val }

// String returns the integer form when coerced, the raw cell otherwise.
func (n Num) String() string {
	if n.num {
		return strconv.Itoa(n.val)
	}
	return n.raw
}

// Value returns an int for coerced values and the raw string otherwise,
// for JSON responses that mirror the source typing.
func (n Num) Value() any {
	if n.num {
		return n.val
	}
	return n.raw
}

// Metadata is the structured, filterable view of a city document: a closed
// common-field set plus an extension map for premium-only source columns.
type Metadata struct {
	City     string
	Country  string
	Region   string
	Source   string
	Tier     tier.Tier
	DataType tier.DataType

	Budget       string
	Internet     string
	Visa         string
	VisaScore    string
	VisaType     string
	VisaDuration string
	Schengen     string
	SummerTemp   string
	WinterTemp   string
	Safety       string
	Nightlife    string
	Family       string
	Startup      string
	Coworking    string
	VibeTags     string
	ExpatSize    string
	English      string
	Outdoor      string
	Sunshine     string

	BudgetEUR     Num
	CoworkingEUR  Num
	AirbnbEUR     Num
	Population    Num
	VisaIncomeReq Num

	// Extra holds premium-tier source columns retained verbatim.
	Extra map[string]string
}

// Fields flattens metadata into hash fields for storage and indexing.
// Empty values are omitted; tier and data_type are always present.
func (m Metadata) Fields() map[string]string {
	f := make(map[string]string, 32+len(m.Extra))
	f["tier"] = string(m.Tier)
	f["data_type"] = string(m.DataType)

	for k, v := range m.stringFields() {
		if v != "" {
			f[k] = v
		}
	}
	for k, n := range m.numFields() {
		if !n.IsZero() {
			f[k] = n.String()
		}
	}
	for k, v := range m.Extra {
		if _, taken := f[k]; !taken && v != "" {
			f[k] = v
		}
	}
	return f
}

// Map returns metadata as a JSON-friendly map, with coerced numeric
// fields carried as numbers.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, 32+len(m.Extra))
	for k, v := range m.Fields() {
		out[k] = v
	}
	for k, n := range m.numFields() {
		if !n.IsZero() {
			out[k] = n.Value()
		}
	}
	return out
}

// FromFields rebuilds Metadata from flat hash fields. Internal fields
// (double-underscore prefix) are skipped; unrecognized keys land in Extra.
func FromFields(fields map[string]string) Metadata {
	var m Metadata
	for k, v := range fields {
		if strings.HasPrefix(k, "__") {
			continue
		}
		switch k {
		case "city":
			m.City = v
		case "country":
			m.Country = v
		case "region":
			m.Region = v
		case "source":
			m.Source = v
		case "tier":
			m.Tier = tier.Parse(v)
		case "data_type":
			m.DataType = tier.ParseDataType(v)
		case "budget":
			m.Budget = v
		case "internet":
			m.Internet = v
		case "visa":
			m.Visa = v
		case "visa_score":
			m.VisaScore = v
		case "visa_type":
			m.VisaType = v
		case "visa_duration":
			m.VisaDuration = v
		case "schengen":
			m.Schengen = v
		case "summer_temp":
			m.SummerTemp = v
		case "winter_temp":
			m.WinterTemp = v
		case "safety":
			m.Safety = v
		case "nightlife":
			m.Nightlife = v
		case "family":
			m.Family = v
		case "startup":
			m.Startup = v
		case "coworking":
			m.Coworking = v
		case "vibe_tags":
			m.VibeTags = v
		case "expat_size":
			m.ExpatSize = v
		case "english":
			m.English = v
		case "outdoor":
			m.Outdoor = v
		case "sunshine":
			m.Sunshine = v
		case "budget_eur":
			m.BudgetEUR = NumOf(v)
		case "coworking_eur":
			m.CoworkingEUR = NumOf(v)
		case "airbnb_eur":
			m.AirbnbEUR = NumOf(v)
		case "population":
			m.Population = NumOf(v)
		case "visa_income_req":
			m.VisaIncomeReq = NumOf(v)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]string)
			}
			m.Extra[k] = v
		}
	}
	return m
}

// ExtraValue looks up an extension field by name, case-insensitively.
func (m Metadata) ExtraValue(name string) string {
	if v, ok := m.Extra[name]; ok {
		return v
	}
	for k, v := range m.Extra {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (m Metadata) stringFields() map[string]string {
	return map[string]string{
		"city":          m.City,
		"country":       m.Country,
		"region":        m.Region,
		"source":        m.Source,
		"budget":        m.Budget,
		"internet":      m.Internet,
		"visa":          m.Visa,
		"visa_score":    m.VisaScore,
		"visa_type":     m.VisaType,
		"visa_duration": m.VisaDuration,
		"schengen":      m.Schengen,
		"summer_temp":   m.SummerTemp,
		"winter_temp":   m.WinterTemp,
		"safety":        m.Safety,
		"nightlife":     m.Nightlife,
		"family":        m.Family,
		"startup":       m.Startup,
		"coworking":     m.Coworking,
		"vibe_tags":     m.VibeTags,
		"expat_size":    m.ExpatSize,
		"english":       m.English,
		"outdoor":       m.Outdoor,
		"sunshine":      m.Sunshine,
	}
}

func (m Metadata) numFields() map[string]Num {
	return map[string]Num{
		"budget_eur":      m.BudgetEUR,
		"coworking_eur":   m.CoworkingEUR,
		"airbnb_eur":      m.AirbnbEUR,
		"population":      m.Population,
		"visa_income_req": m.VisaIncomeReq,
	}
}
