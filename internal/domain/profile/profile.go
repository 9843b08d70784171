package profile

import (
	"encoding/json"
	"strings"
)

// Profile is a caller-supplied preference set used for boost scoring.
// All keys are optional; the engine never persists it.
type Profile struct {
	Visa      string   `json:"visa,omitempty"`
	Budget    string   `json:"budget,omitempty"`
	Climate   string   `json:"climate,omitempty"`
	Family    string   `json:"family,omitempty"`
	Nightlife string   `json:"nightlife,omitempty"`
	Vibes     []string `json:"vibes,omitempty"`
}

// IsZero reports whether no preference is set.
func (p Profile) IsZero() bool {
	return p.Visa == "" && p.Budget == "" && p.Climate == "" &&
		p.Family == "" && p.Nightlife == "" && len(p.Vibes) == 0
}

// VibeTags returns the vibe preferences trimmed and lowercased.
func (p Profile) VibeTags() []string {
	tags := make([]string, 0, len(p.Vibes))
	for _, v := range p.Vibes {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			tags = append(tags, v)
		}
	}
	return tags
}

// UnmarshalJSON accepts vibes as either a JSON array or a single
// comma-separated string, mirroring the loose client payloads.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw struct {
		Visa      string          `json:"visa"`
		Budget    string          `json:"budget"`
		Climate   string          `json:"climate"`
		Family    string          `json:"family"`
		Nightlife string          `json:"nightlife"`
		Vibes     json.RawMessage `json:"vibes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Visa = raw.Visa
	p.Budget = raw.Budget
	p.Climate = raw.Climate
	p.Family = raw.Family
	p.Nightlife = raw.Nightlife
	p.Vibes = nil

	if len(raw.Vibes) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw.Vibes, &list); err == nil {
		p.Vibes = list
		return nil
	}
	var single string
	if err := json.Unmarshal(raw.Vibes, &single); err != nil {
		return err
	}
	for _, v := range strings.Split(single, ",") {
		if v = strings.TrimSpace(v); v != "" {
			p.Vibes = append(p.Vibes, v)
		}
	}
	return nil
}
