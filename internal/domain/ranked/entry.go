package ranked

import (
	"github.com/nomadmatch/nomadmatch/internal/domain/document"
)

// PremiumData surfaces visa and residency fields for premium requests.
// It is attached only when the request tier is premium; this is the
// enforcement point for the paid-feature boundary.
type PremiumData struct {
	VisaAvailable    string `json:"visa_available"`
	VisaType         string `json:"visa_type"`
	VisaDuration     string `json:"visa_duration"`
	VisaIncomeReqEUR any    `json:"visa_income_req_eur"`
	VisaScore        string `json:"visa_score"`
	Schengen         string `json:"schengen"`
}

// Entry is one ranked recommendation: a candidate plus its applied
// boosts and final clamped score. Ephemeral, never cached.
type Entry struct {
	City      string         `json:"city"`
	Country   string         `json:"country"`
	Region    string         `json:"region"`
	Score     float64        `json:"score"`
	ScorePct  float64        `json:"score_pct"`
	BaseScore float64        `json:"base_score"`
	Boosts    []string       `json:"boosts"`
	Metadata  map[string]any `json:"metadata"`
	Premium   *PremiumData   `json:"premium_data,omitempty"`
}

// NewPremiumData builds the premium sub-object from metadata, with the
// documented N/A and zero defaults for absent fields.
func NewPremiumData(m document.Metadata) *PremiumData {
	pd := &PremiumData{
		VisaAvailable:    orDefault(m.Visa, "No"),
		VisaType:         orDefault(m.VisaType, "N/A"),
		VisaDuration:     orDefault(m.VisaDuration, "N/A"),
		VisaIncomeReqEUR: 0,
		VisaScore:        orDefault(m.VisaScore, "N/A"),
		Schengen:         orDefault(m.Schengen, "N/A"),
	}
	if !m.VisaIncomeReq.IsZero() {
		pd.VisaIncomeReqEUR = m.VisaIncomeReq.Value()
	}
	return pd
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
