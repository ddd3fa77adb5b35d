package parser

import (
	"regexp"
	"strings"

	"github.com/vhm205/speckit-dash-sub001/internal/markdown"
)

// specSection is the cursor set by the most recent depth-2 heading.
type specSection int

const (
	specSectionNone specSection = iota
	specSectionStories
	specSectionRequirements
)

var (
	// metadataPattern matches bold-label paragraphs in either colon
	// placement: **Status**: Draft and **Status:** Draft.
	metadataPattern = regexp.MustCompile(`^\*\*([^*]+?)(?:\*\*\s*:|:\*\*)\s*(.*)$`)

	storyPriorityPattern = regexp.MustCompile(`(?i)\s*\(priority:\s*(p[123])\)\s*$`)

	requirementPattern = regexp.MustCompile(`(?i)^(N?FR-\d{3})\s*[-:–]?\s*(.*)$`)
)

// ParseSpec extracts the structured content of a spec.md document.
// An optional YAML front matter header seeds the metadata fields; bold
// label paragraphs in the body overwrite them, last occurrence winning.
func (p *Parser) ParseSpec(source []byte) SpecDoc {
	fm, body := splitFrontMatter(source)

	doc := SpecDoc{
		Status:        strings.TrimSpace(fm.Status),
		FeatureBranch: strings.TrimSpace(fm.Branch),
		Priority:      normalizePriority(fm.Priority),
	}
	if fm.Created != "" {
		doc.CreatedDate = parseDate(fm.Created)
	}

	section := specSectionNone
	var story *UserStory

	flushStory := func() {
		if story != nil {
			doc.Stories = append(doc.Stories, *story)
			story = nil
		}
	}

	for _, b := range p.md.Parse(body) {
		switch b.Kind {
		case markdown.KindHeading:
			switch {
			case b.Level == 1:
				title := strings.TrimPrefix(b.Text, "Feature Specification:")
				doc.Title = strings.TrimSpace(title)
			case b.Level == 2:
				flushStory()
				section = classifySpecSection(b.Text)
			case b.Level == 3 && section == specSectionStories:
				flushStory()
				title, priority := splitStoryPriority(b.Text)
				story = &UserStory{Title: title, Priority: priority}
			}

		case markdown.KindParagraph:
			if applySpecMetadata(&doc, b.Raw) {
				continue
			}
			if story != nil && story.Description == "" && !strings.HasPrefix(strings.TrimSpace(b.Raw), "**") {
				story.Description = b.Text
			}

		case markdown.KindList:
			switch {
			case section == specSectionRequirements:
				doc.Requirements = append(doc.Requirements, extractRequirements(b.Items)...)
			case story != nil && len(story.Scenarios) == 0:
				for _, item := range b.Items {
					story.Scenarios = append(story.Scenarios, item.Text)
				}
			}
		}
	}
	flushStory()

	return doc
}

func classifySpecSection(heading string) specSection {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "user") && strings.Contains(h, "scenario"):
		return specSectionStories
	case strings.Contains(h, "requirement"):
		return specSectionRequirements
	}
	return specSectionNone
}

// splitStoryPriority strips a trailing (Priority: Pn) marker from a
// story heading. Stories without a marker default to P2.
func splitStoryPriority(heading string) (title, priority string) {
	if m := storyPriorityPattern.FindStringSubmatch(heading); m != nil {
		title = strings.TrimSpace(storyPriorityPattern.ReplaceAllString(heading, ""))
		return title, strings.ToUpper(m[1])
	}
	return strings.TrimSpace(heading), "P2"
}

// applySpecMetadata recognizes **Status**:, **Created**:, **Feature
// Branch**: and **Priority**: labels anywhere in the document. The
// template stacks several labels on adjacent lines of one paragraph, so
// each line is matched separately. Later occurrences overwrite earlier
// ones; values that fail to parse leave the field as is. Reports
// whether any known label matched.
func applySpecMetadata(doc *SpecDoc, raw string) bool {
	matched := false
	for _, line := range strings.Split(raw, "\n") {
		m := metadataPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		value := strings.TrimSpace(m[2])
		switch strings.ToLower(strings.TrimSpace(m[1])) {
		case "status":
			doc.Status = value
		case "created":
			if t := parseDate(value); t != nil {
				doc.CreatedDate = t
			}
		case "feature branch":
			doc.FeatureBranch = strings.Trim(value, "`")
		case "priority":
			if p := normalizePriority(value); p != "" {
				doc.Priority = p
			}
		default:
			continue
		}
		matched = true
	}
	return matched
}

// extractRequirements keeps only list items bearing a leading FR-### or
// NFR-### token, with the token and a following colon or dash stripped
// from the description.
func extractRequirements(items []markdown.ListItem) []Requirement {
	var reqs []Requirement
	for _, item := range items {
		m := requirementPattern.FindStringSubmatch(item.Text)
		if m == nil {
			continue
		}
		reqs = append(reqs, Requirement{
			ID:          strings.ToUpper(m[1]),
			Description: strings.TrimSpace(m[2]),
		})
	}
	return reqs
}

var priorityPattern = regexp.MustCompile(`(?i)^p([123])$`)

func normalizePriority(value string) string {
	if m := priorityPattern.FindStringSubmatch(strings.TrimSpace(value)); m != nil {
		return "P" + m[1]
	}
	return ""
}
