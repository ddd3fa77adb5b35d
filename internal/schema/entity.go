package schema

import "fmt"

// Entity is one data-model entity parsed from a data-model.md document.
// Entities follow merge semantics: sync upserts by (feature, name) and
// never bulk-deletes, so the set only grows or updates.
type Entity struct {
	ID        int64  `json:"id"`
	FeatureID int64  `json:"feature_id"`
	Name      string `json:"name"`

	Description   string         `json:"description,omitempty"`
	Attributes    []Attribute    `json:"attributes,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// Attribute is one field of an entity, from a list item or table row.
type Attribute struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Constraint string `json:"constraint,omitempty"`
}

// Relationship links an entity to a target entity with a cardinality of
// 1:1, 1:N, N:1 or N:N.
type Relationship struct {
	Target      string `json:"target"`
	Cardinality string `json:"cardinality"`
	Description string `json:"description,omitempty"`
}

// Validate checks if the Entity has valid field values.
func (e *Entity) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// SetDefaults applies default values for optional fields.
func (e *Entity) SetDefaults() {
	if e.Attributes == nil {
		e.Attributes = []Attribute{}
	}
	if e.Relationships == nil {
		e.Relationships = []Relationship{}
	}
}
