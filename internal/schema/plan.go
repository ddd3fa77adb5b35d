package schema

// Plan is the singleton implementation-plan record for a feature,
// upserted in place on every sync of plan.md.
type Plan struct {
	ID        int64 `json:"id"`
	FeatureID int64 `json:"feature_id"`

	Summary      string            `json:"summary,omitempty"`
	TechStack    map[string]string `json:"tech_stack,omitempty"`
	Phases       []PlanPhase       `json:"phases,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Risks        []Risk            `json:"risks,omitempty"`
}

// PlanPhase is one ordered phase section of a plan document.
type PlanPhase struct {
	Name  string   `json:"name"`
	Goal  string   `json:"goal,omitempty"`
	Order int      `json:"order"`
	Tasks []string `json:"tasks,omitempty"`
}

// Risk pairs a risk with its mitigation, split from a single list item.
type Risk struct {
	Risk       string `json:"risk"`
	Mitigation string `json:"mitigation,omitempty"`
}

// SetDefaults applies default values for optional fields.
func (p *Plan) SetDefaults() {
	if p.TechStack == nil {
		p.TechStack = map[string]string{}
	}
	if p.Phases == nil {
		p.Phases = []PlanPhase{}
	}
	if p.Dependencies == nil {
		p.Dependencies = []string{}
	}
	if p.Risks == nil {
		p.Risks = []Risk{}
	}
}
