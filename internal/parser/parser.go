package parser

import (
	"time"

	"github.com/vhm205/speckit-dash-sub001/internal/markdown"
	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// Parser bundles the five format parsers behind one constructor so the
// markdown machinery is built once and shared.
type Parser struct {
	md *markdown.Parser
}

// New creates a Parser. A single Parser is safe to reuse across
// documents.
func New() *Parser {
	return &Parser{md: markdown.New()}
}

// SpecDoc is the parsed form of a spec.md document.
type SpecDoc struct {
	Title         string
	Status        string // raw status text as written in the document
	Priority      string
	CreatedDate   *time.Time
	FeatureBranch string
	Stories       []UserStory
	Requirements  []Requirement
}

// UserStory is one depth-3 story section from the user-scenarios part
// of a spec document.
type UserStory struct {
	Title       string
	Priority    string // P1, P2 or P3; P2 when the heading carries no marker
	Description string
	Scenarios   []string
}

// Requirement is one FR-###/NFR-### list item from the requirements
// section. Classification into functional/non_functional happens at the
// sync layer, not here.
type Requirement struct {
	ID          string
	Description string
}

// TasksDoc is the parsed form of a tasks.md document.
type TasksDoc struct {
	Title      string
	Tasks      []schema.Task
	PhaseNames []string
}

// DataModelDoc is the parsed form of a data-model.md document.
type DataModelDoc struct {
	Overview string
	Entities []schema.Entity
}
