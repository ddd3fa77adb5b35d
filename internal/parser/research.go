package parser

import (
	"regexp"
	"strings"

	"github.com/vhm205/speckit-dash-sub001/internal/markdown"
	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

const (
	curDecision     = "decision"
	curRationale    = "rationale"
	curAlternatives = "alternatives"
	curContext      = "context"
)

// ordinalPrefixPattern strips a "1. " style numbering from decision
// headings so that re-numbered documents keep stable titles.
var ordinalPrefixPattern = regexp.MustCompile(`^\d+\.\s+`)

// ParseResearch extracts the recorded decisions from a research.md
// document. Each depth-3 heading opens a decision; deeper headings and
// bold "**Decision**:" style labels route the following content into
// the decision, rationale, alternatives or context field.
func (p *Parser) ParseResearch(source []byte) []schema.ResearchDecision {
	var decisions []schema.ResearchDecision

	inRegion := true
	var current *schema.ResearchDecision
	cursor := ""
	var buffer []string

	flushBuffer := func() {
		if current == nil || len(buffer) == 0 {
			buffer = nil
			return
		}
		joined := strings.Join(buffer, "\n\n")
		buffer = nil
		switch cursor {
		case curDecision, "":
			if current.Decision == "" {
				current.Decision = joined
			}
		case curRationale:
			if current.Rationale == "" {
				current.Rationale = joined
			} else {
				current.Rationale += "\n\n" + joined
			}
		case curContext:
			if current.Context == "" {
				current.Context = joined
			} else {
				current.Context += "\n\n" + joined
			}
		case curAlternatives:
			// Alternatives come from list items; stray prose under the
			// heading is dropped.
		}
	}

	flushDecision := func() {
		flushBuffer()
		if current != nil {
			current.SetDefaults()
			decisions = append(decisions, *current)
			current = nil
		}
		cursor = ""
	}

	for _, b := range p.md.Parse(source) {
		switch b.Kind {
		case markdown.KindHeading:
			switch {
			case b.Level == 2:
				flushDecision()
				h := strings.ToLower(b.Text)
				inRegion = strings.Contains(h, "research") || strings.Contains(h, "phase")
			case b.Level == 3:
				flushDecision()
				if inRegion {
					title := ordinalPrefixPattern.ReplaceAllString(strings.TrimSpace(b.Text), "")
					if title != "" {
						current = &schema.ResearchDecision{Title: title}
					}
				}
			case b.Level >= 4 && current != nil:
				flushBuffer()
				cursor = researchCursorFor(b.Text)
			}

		case markdown.KindParagraph:
			if current == nil {
				continue
			}
			applyResearchLabels(current, &cursor, &buffer, flushBuffer, b)

		case markdown.KindList:
			if current != nil && cursor == curAlternatives {
				for _, item := range b.Items {
					if text := strings.TrimSpace(item.Text); text != "" {
						current.Alternatives = append(current.Alternatives, text)
					}
				}
			}

		case markdown.KindCode:
			if current != nil && cursor == curContext {
				buffer = append(buffer, fencedCode(b))
			}
		}
	}
	flushDecision()

	return decisions
}

// applyResearchLabels scans a paragraph line by line for bold labels.
// A label line switches the cursor just like a sub-heading would, and
// an inline value after the label is assigned immediately. Paragraphs
// without any label are buffered under the current cursor.
func applyResearchLabels(current *schema.ResearchDecision, cursor *string, buffer *[]string, flushBuffer func(), b markdown.Block) {
	var leftover []string
	matched := false

	for _, line := range strings.Split(b.Raw, "\n") {
		m := metadataPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				leftover = append(leftover, trimmed)
			}
			continue
		}

		label := strings.ToLower(strings.TrimSpace(m[1]))
		value := strings.TrimSpace(m[2])
		switch {
		case strings.Contains(label, "decision"):
			flushBuffer()
			*cursor = curDecision
			if value != "" {
				current.Decision = value
			}
		case strings.Contains(label, "rationale") || strings.Contains(label, "why"):
			flushBuffer()
			*cursor = curRationale
			if value != "" {
				*buffer = append(*buffer, value)
			}
		case strings.Contains(label, "alternative"):
			flushBuffer()
			*cursor = curAlternatives
			if value != "" {
				current.Alternatives = append(current.Alternatives, value)
			}
		case strings.Contains(label, "context"):
			flushBuffer()
			*cursor = curContext
			if value != "" {
				*buffer = append(*buffer, value)
			}
		default:
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				leftover = append(leftover, trimmed)
			}
			continue
		}
		matched = true
	}

	if !matched {
		if b.Text != "" {
			*buffer = append(*buffer, b.Text)
		}
		return
	}
	if len(leftover) > 0 {
		*buffer = append(*buffer, strings.Join(leftover, " "))
	}
}

func researchCursorFor(heading string) string {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "decision"):
		return curDecision
	case strings.Contains(h, "rationale") || strings.Contains(h, "why"):
		return curRationale
	case strings.Contains(h, "alternative"):
		return curAlternatives
	case strings.Contains(h, "context"):
		return curContext
	}
	return ""
}

func fencedCode(b markdown.Block) string {
	var sb strings.Builder
	sb.WriteString("```")
	sb.WriteString(b.Lang)
	sb.WriteString("\n")
	sb.WriteString(b.Code)
	sb.WriteString("\n```")
	return sb.String()
}
