package parser

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

var (
	tasksTitlePattern = regexp.MustCompile(`^#\s+(.+)$`)
	tasksPhasePattern = regexp.MustCompile(`^##\s+(.+)$`)

	// phaseNumberPattern decides whether a depth-2 heading opens a
	// phase context ("Phase 1: Setup") or is just prose structure.
	phaseNumberPattern = regexp.MustCompile(`(?i)\bphase\s+\d+`)

	checkboxPattern   = regexp.MustCompile(`^\s*[-*]\s+\[([^\]]*)\]\s*(.*)$`)
	taskTokenPattern  = regexp.MustCompile(`(?i)\bT\d{3}\b`)
	storyLabelPattern = regexp.MustCompile(`(?i)\[(US\d+)\]`)
	taskFilePattern   = regexp.MustCompile("`([^`\\s]+\\.[A-Za-z0-9]+)`")
	dependsOnPattern  = regexp.MustCompile(`(?i)\bdepends\s+on:?\s*((?:t\d{3}[,\s]*)+)`)
)

const parallelMarker = "[P]"

// ParseTasks extracts checkbox tasks from a tasks.md document. The
// scan is line-based rather than block-based because checkbox syntax is
// line-anchored; line numbers are recorded 1-based for traceability.
func (p *Parser) ParseTasks(source []byte) TasksDoc {
	var doc TasksDoc

	var phaseName string
	phaseOrder := 0

	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if m := tasksTitlePattern.FindStringSubmatch(line); m != nil {
			if doc.Title == "" {
				doc.Title = strings.TrimSpace(m[1])
			}
			continue
		}

		if m := tasksPhasePattern.FindStringSubmatch(line); m != nil {
			heading := strings.TrimSpace(m[1])
			if phaseNumberPattern.MatchString(heading) {
				phaseName = heading
				phaseOrder++
				doc.PhaseNames = append(doc.PhaseNames, heading)
			}
			continue
		}

		m := checkboxPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		task, ok := parseTaskLine(m[1], m[2], lineNo)
		if !ok {
			continue
		}
		task.PhaseName = phaseName
		task.PhaseOrder = phaseOrder
		doc.Tasks = append(doc.Tasks, task)
	}
	// A scanner error means an absurdly long line; the tasks parsed so
	// far still stand.

	return doc
}

// parseTaskLine builds a task from one checkbox line. Lines without a
// T### identifier are not tasks and report ok=false.
func parseTaskLine(marker, content string, line int) (schema.Task, bool) {
	idLoc := taskTokenPattern.FindStringIndex(content)
	if idLoc == nil {
		return schema.Task{}, false
	}

	task := schema.Task{
		TaskID: strings.ToUpper(content[idLoc[0]:idLoc[1]]),
		Status: checkboxStatus(marker),
		Line:   line,
	}

	desc := content[:idLoc[0]] + content[idLoc[1]:]

	if strings.Contains(desc, parallelMarker) {
		task.IsParallel = true
		desc = strings.ReplaceAll(desc, parallelMarker, "")
	}

	if m := storyLabelPattern.FindStringSubmatch(desc); m != nil {
		task.StoryLabel = strings.ToUpper(m[1])
		desc = strings.Replace(desc, m[0], "", 1)
	}

	if m := taskFilePattern.FindStringSubmatch(content); m != nil {
		task.FilePath = m[1]
	}

	if m := dependsOnPattern.FindStringSubmatch(content); m != nil {
		for _, tok := range taskTokenPattern.FindAllString(m[1], -1) {
			task.DependsOn = append(task.DependsOn, strings.ToUpper(tok))
		}
	}

	task.Description = strings.Join(strings.Fields(desc), " ")
	task.SetDefaults()
	return task, true
}

func checkboxStatus(marker string) string {
	switch marker {
	case "x":
		return schema.TaskStatusDone
	case "/":
		return schema.TaskStatusInProgress
	}
	return schema.TaskStatusNotStarted
}
