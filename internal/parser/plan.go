package parser

import (
	"regexp"
	"strings"

	"github.com/vhm205/speckit-dash-sub001/internal/markdown"
	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

type planSection int

const (
	planSectionNone planSection = iota
	planSectionSummary
	planSectionTech
	planSectionPhase
	planSectionDependencies
	planSectionRisks
)

// techPairPattern matches bold "**Key**: value" pairs inside a
// technical context paragraph, tolerating the colon on either side of
// the closing markers.
var techPairPattern = regexp.MustCompile(`\*\*([^*]+?)(?:\*\*\s*:|:\*\*)\s*([^*\n]+)`)

// riskDelimiters are tried in order when splitting a risk item into the
// risk and its mitigation.
var riskDelimiters = []string{" - ", " – ", ": "}

// ParsePlan extracts the implementation plan from a plan.md document:
// the summary, technical context key/value pairs, ordered phases with
// their goals and task references, dependencies and risks.
func (p *Parser) ParsePlan(source []byte) schema.Plan {
	plan := schema.Plan{}
	plan.SetDefaults()

	section := planSectionNone
	var phase *schema.PlanPhase
	phaseOrder := 0

	flushPhase := func() {
		if phase != nil {
			plan.Phases = append(plan.Phases, *phase)
			phase = nil
		}
	}

	for _, b := range p.md.Parse(source) {
		switch b.Kind {
		case markdown.KindHeading:
			if b.Level != 2 {
				continue
			}
			flushPhase()
			h := strings.ToLower(b.Text)
			switch {
			case strings.Contains(h, "summary"):
				section = planSectionSummary
			case strings.Contains(h, "technical context") || strings.Contains(h, "tech"):
				section = planSectionTech
			case strings.Contains(h, "phase"):
				section = planSectionPhase
				phaseOrder++
				phase = &schema.PlanPhase{
					Name:  strings.TrimSpace(b.Text),
					Order: phaseOrder,
					Tasks: []string{},
				}
			case strings.Contains(h, "dependencies"):
				section = planSectionDependencies
			case strings.Contains(h, "risk"):
				section = planSectionRisks
			default:
				section = planSectionNone
			}

		case markdown.KindParagraph:
			switch section {
			case planSectionSummary:
				if plan.Summary == "" {
					plan.Summary = b.Text
				}
			case planSectionTech:
				for _, m := range techPairPattern.FindAllStringSubmatch(b.Raw, -1) {
					key := strings.TrimSpace(m[1])
					value := strings.TrimSpace(m[2])
					if key != "" && value != "" {
						plan.TechStack[key] = value
					}
				}
			case planSectionPhase:
				if phase != nil && phase.Goal == "" {
					phase.Goal = b.Text
				}
			}

		case markdown.KindList:
			switch section {
			case planSectionPhase:
				if phase != nil {
					for _, item := range b.Items {
						if text := strings.TrimSpace(item.Text); text != "" {
							phase.Tasks = append(phase.Tasks, text)
						}
					}
				}
			case planSectionDependencies:
				for _, item := range b.Items {
					if text := strings.TrimSpace(item.Text); text != "" {
						plan.Dependencies = append(plan.Dependencies, text)
					}
				}
			case planSectionRisks:
				for _, item := range b.Items {
					if risk, ok := parseRiskItem(item.Text); ok {
						plan.Risks = append(plan.Risks, risk)
					}
				}
			}
		}
	}
	flushPhase()

	return plan
}

// parseRiskItem splits "risk - mitigation" on the first recognized
// delimiter. Items without a delimiter carry no mitigation and are
// dropped.
func parseRiskItem(text string) (schema.Risk, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return schema.Risk{}, false
	}

	for _, delim := range riskDelimiters {
		if idx := strings.Index(text, delim); idx >= 0 {
			risk := strings.TrimSpace(text[:idx])
			mitigation := strings.TrimSpace(text[idx+len(delim):])
			if risk != "" && mitigation != "" {
				return schema.Risk{Risk: risk, Mitigation: mitigation}, true
			}
		}
	}
	return schema.Risk{}, false
}
