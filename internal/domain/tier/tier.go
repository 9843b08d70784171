package tier

import "strings"

// Tier is the access class attached to both a document batch and a request.
type Tier string

// Access tiers.
const (
	Free    Tier = "free"
	Premium Tier = "premium"
)

// DataType is the premium sub-category of a document batch.
type DataType string

// Batch data types.
const (
	General DataType = "General"
	Visa    DataType = "Visa"
	Tax     DataType = "Tax"
)

// Parse normalizes a tier string, defaulting to Free for unknown values.
func Parse(s string) Tier {
	if strings.EqualFold(strings.TrimSpace(s), string(Premium)) {
		return Premium
	}
	return Free
}

// ParseDataType normalizes a data type string, defaulting to General.
func ParseDataType(s string) DataType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "visa":
		return Visa
	case "tax":
		return Tax
	default:
		return General
	}
}

// ClassifySource inspects a source batch label for premium markers.
// Returns ok=false when the label carries no classification, in which
// case the caller falls back to per-row columns.
func ClassifySource(label string) (Tier, DataType, bool) {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "visa_premium"):
		return Premium, Visa, true
	case strings.Contains(l, "tax_premium"):
		return Premium, Tax, true
	default:
		return Free, General, false
	}
}
