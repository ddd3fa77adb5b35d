package schema

import "fmt"

// ResearchDecision is one decision section from a research.md document.
// Decisions follow merge semantics: upserted by (feature, title), never
// bulk-deleted by sync.
type ResearchDecision struct {
	ID        int64  `json:"id"`
	FeatureID int64  `json:"feature_id"`
	Title     string `json:"title"`

	Decision     string   `json:"decision,omitempty"`
	Rationale    string   `json:"rationale,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	Context      string   `json:"context,omitempty"`
}

// Validate checks if the ResearchDecision has valid field values.
func (d *ResearchDecision) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (d *ResearchDecision) SetDefaults() {
	if d.Alternatives == nil {
		d.Alternatives = []string{}
	}
}
