package parser

import (
	"regexp"
	"strings"

	"github.com/vhm205/speckit-dash-sub001/internal/markdown"
	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

// dmSection is the top-level cursor for the data-model scan. Entity
// sections are tracked separately through the open entity record.
type dmSection int

const (
	dmSectionNone dmSection = iota
	dmSectionOverview
	dmSectionRelationships
)

const (
	subAttributes    = "attributes"
	subRelationships = "relationships"
)

var (
	// attributePattern matches "name (type): constraints" with both the
	// parenthesized type and the trailing constraints optional.
	attributePattern = regexp.MustCompile(`^([^(:]+?)\s*(?:\(([^)]*)\))?\s*(?::\s*(.*))?$`)

	// relationshipVerbPattern extracts the target entity after a
	// has/belongs/references verb phrase.
	relationshipVerbPattern = regexp.MustCompile(`(?i)\b(?:has|belongs|references)(?:\s+(?:many|one|to))*\s+([A-Za-z][\w-]*)`)
)

// ParseDataModel extracts entities with their attributes and
// relationships from a data-model.md document. Depth-2 headings open
// entities unless they are overview or relationship sections; depth-3
// headings switch the attribute/relationship sub-section within an
// entity.
func (p *Parser) ParseDataModel(source []byte) DataModelDoc {
	var doc DataModelDoc

	section := dmSectionNone
	var entity *schema.Entity
	subsection := ""

	flushEntity := func() {
		if entity != nil {
			entity.SetDefaults()
			doc.Entities = append(doc.Entities, *entity)
			entity = nil
		}
		subsection = ""
	}

	for _, b := range p.md.Parse(source) {
		switch b.Kind {
		case markdown.KindHeading:
			switch {
			case b.Level == 2:
				flushEntity()
				h := strings.ToLower(b.Text)
				switch {
				case strings.Contains(h, "overview") || strings.Contains(h, "summary"):
					section = dmSectionOverview
				case strings.Contains(h, "relationship"):
					section = dmSectionRelationships
				default:
					section = dmSectionNone
					entity = &schema.Entity{Name: strings.TrimSpace(b.Text)}
				}
			case b.Level >= 3 && entity != nil:
				h := strings.ToLower(b.Text)
				switch {
				case strings.Contains(h, "attribute"):
					subsection = subAttributes
				case strings.Contains(h, "relationship"):
					subsection = subRelationships
				default:
					// Unrecognized sub-sections are preserved as a
					// verbatim tag but their content is not parsed.
					subsection = strings.TrimSpace(b.Text)
				}
			}

		case markdown.KindParagraph:
			switch {
			case entity != nil && entity.Description == "" && subsection == "":
				entity.Description = b.Text
			case entity == nil && section == dmSectionOverview && doc.Overview == "":
				doc.Overview = b.Text
			}

		case markdown.KindList:
			switch {
			case entity != nil && subsection == subAttributes:
				for _, item := range b.Items {
					if attr, ok := parseAttributeItem(item.Text); ok {
						entity.Attributes = append(entity.Attributes, attr)
					}
				}
			case entity != nil && subsection == subRelationships:
				for _, item := range b.Items {
					if rel, ok := parseRelationshipItem(item.Text); ok {
						entity.Relationships = append(entity.Relationships, rel)
					}
				}
			case entity == nil && section == dmSectionRelationships:
				for _, item := range b.Items {
					attachRelationship(&doc, item.Text)
				}
			}

		case markdown.KindTable:
			if entity != nil && subsection == subAttributes {
				for _, row := range b.Rows {
					if attr, ok := attributeFromRow(row); ok {
						entity.Attributes = append(entity.Attributes, attr)
					}
				}
			}
		}
	}
	flushEntity()

	return doc
}

func parseAttributeItem(text string) (schema.Attribute, bool) {
	m := attributePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return schema.Attribute{}, false
	}

	attr := schema.Attribute{
		Name:       strings.TrimSpace(m[1]),
		Type:       strings.TrimSpace(m[2]),
		Constraint: strings.TrimSpace(m[3]),
	}
	if attr.Type == "" {
		attr.Type = "string"
	}
	return attr, true
}

// attributeFromRow reads name/type/constraint positionally from a table
// row. Tables are the higher-fidelity source: no pattern matching, the
// columns are taken as they are.
func attributeFromRow(row []string) (schema.Attribute, bool) {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return schema.Attribute{}, false
	}

	attr := schema.Attribute{Name: strings.TrimSpace(row[0]), Type: "string"}
	if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
		attr.Type = strings.TrimSpace(row[1])
	}
	if len(row) > 2 {
		attr.Constraint = strings.TrimSpace(row[2])
	}
	return attr, true
}

func parseRelationshipItem(text string) (schema.Relationship, bool) {
	m := relationshipVerbPattern.FindStringSubmatch(text)
	if m == nil {
		return schema.Relationship{}, false
	}

	return schema.Relationship{
		Target:      m[1],
		Cardinality: inferCardinality(text),
		Description: strings.TrimSpace(text),
	}, true
}

// attachRelationship handles items in a top-level relationships section
// ("User has many Posts") by matching the text before the verb phrase
// against an already-parsed entity name. Items naming no known entity
// are dropped.
func attachRelationship(doc *DataModelDoc, text string) {
	loc := relationshipVerbPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}

	owner := strings.TrimSpace(text[:loc[0]])
	rel := schema.Relationship{
		Target:      text[loc[2]:loc[3]],
		Cardinality: inferCardinality(text),
		Description: strings.TrimSpace(text),
	}

	for i := range doc.Entities {
		if strings.EqualFold(doc.Entities[i].Name, owner) {
			doc.Entities[i].Relationships = append(doc.Entities[i].Relationships, rel)
			return
		}
	}
}

func inferCardinality(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "1:n") || strings.Contains(t, "one-to-many"):
		return "1:N"
	case strings.Contains(t, "n:1") || strings.Contains(t, "many-to-one"):
		return "N:1"
	case strings.Contains(t, "n:n") || strings.Contains(t, "many-to-many"):
		return "N:N"
	}
	return "1:1"
}
