package schema

import (
	"fmt"
	"strings"
)

// Requirement types. The FR/NFR prefix of the requirement id decides
// functional vs non_functional; constraint is reserved for explicitly
// tagged items.
const (
	RequirementTypeFunctional    = "functional"
	RequirementTypeNonFunctional = "non_functional"
	RequirementTypeConstraint    = "constraint"
)

// Requirement is one FR-###/NFR-### item from a spec document's
// requirements section. Requirements follow replace semantics like tasks.
type Requirement struct {
	ID        int64  `json:"id"`
	FeatureID int64  `json:"feature_id"`
	ReqID     string `json:"req_id"` // e.g. FR-001, NFR-002

	Description string   `json:"description"`
	Type        string   `json:"type"` // functional, non_functional, constraint
	Priority    string   `json:"priority,omitempty"`
	LinkedTasks []string `json:"linked_tasks,omitempty"`
	Acceptance  []string `json:"acceptance,omitempty"`
}

// Validate checks if the Requirement has valid field values.
func (r *Requirement) Validate() error {
	if r.ReqID == "" {
		return fmt.Errorf("req_id is required")
	}
	switch r.Type {
	case RequirementTypeFunctional, RequirementTypeNonFunctional, RequirementTypeConstraint:
	default:
		return fmt.Errorf("invalid type: %q", r.Type)
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (r *Requirement) SetDefaults() {
	if r.Type == "" {
		r.Type = RequirementTypeFromID(r.ReqID)
	}
	if r.LinkedTasks == nil {
		r.LinkedTasks = []string{}
	}
	if r.Acceptance == nil {
		r.Acceptance = []string{}
	}
}

// RequirementTypeFromID classifies a requirement by its id prefix:
// NFR-### is non_functional, everything else functional.
func RequirementTypeFromID(reqID string) string {
	if strings.HasPrefix(strings.ToUpper(reqID), "NFR-") {
		return RequirementTypeNonFunctional
	}
	return RequirementTypeFunctional
}
