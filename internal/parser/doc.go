// Package parser turns spec-kit documents into typed records.
//
// Overview
//
// Each document convention gets its own parser: spec.md, tasks.md,
// data-model.md, plan.md and research.md. The parsers share no state and
// consume the block model from internal/markdown (the tasks parser is the
// exception: checkbox syntax is line-anchored, so it scans raw lines).
//
//	spec.md        → SpecDoc    (title, status, stories, requirements)
//	tasks.md       → TasksDoc   (checkbox tasks with phase context)
//	data-model.md  → DataModelDoc (entities, attributes, relationships)
//	plan.md        → schema.Plan  (summary, tech stack, phases, risks)
//	research.md    → decisions    ([]schema.ResearchDecision)
//
// Error Handling
//
// Parsers never fail on malformed text. Patterns that do not match are
// simply not extracted and the affected fields keep their defaults, so a
// half-written document yields a partial record instead of an error.
// Only I/O errors reach the caller, and those happen before parsing.
//
// Usage
//
//	p := parser.New()
//	doc := p.ParseSpec(source)
//	for _, story := range doc.Stories {
//	    fmt.Println(story.Title, story.Priority)
//	}
package parser
