package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vhm205/speckit-dash-sub001/internal/schema"
)

func TestParseTasksFullDocument(t *testing.T) {
	src := `# Tasks: User Authentication

## Phase 1: Setup

- [ ] T001 Create project structure
- [x] T002 Implement parser [P] [US1] ` + "`src/parser.ts`" + `
- [/] T003 Wire up storage, depends on: T001, T002

## Notes

- [ ] This checkbox carries no identifier

## Phase 2: Core

- [X] T004 [P] Build sync engine
`

	doc := New().ParseTasks([]byte(src))

	if doc.Title != "Tasks: User Authentication" {
		t.Errorf("Expected title 'Tasks: User Authentication', got '%s'", doc.Title)
	}
	if len(doc.PhaseNames) != 2 {
		t.Fatalf("Expected 2 phases, got %d", len(doc.PhaseNames))
	}
	if len(doc.Tasks) != 4 {
		t.Fatalf("Expected 4 tasks, got %d", len(doc.Tasks))
	}

	t1 := doc.Tasks[0]
	if t1.TaskID != "T001" {
		t.Errorf("Expected T001, got '%s'", t1.TaskID)
	}
	if t1.Status != schema.TaskStatusNotStarted {
		t.Errorf("Expected not_started, got '%s'", t1.Status)
	}
	if t1.Line != 5 {
		t.Errorf("Expected line 5, got %d", t1.Line)
	}

	t2 := doc.Tasks[1]
	if t2.Status != schema.TaskStatusDone {
		t.Errorf("Expected done, got '%s'", t2.Status)
	}
	if !t2.IsParallel {
		t.Error("Expected parallel marker to be detected")
	}
	if t2.StoryLabel != "US1" {
		t.Errorf("Expected story label US1, got '%s'", t2.StoryLabel)
	}
	if t2.FilePath != "src/parser.ts" {
		t.Errorf("Expected file path src/parser.ts, got '%s'", t2.FilePath)
	}
	if t2.PhaseName != "Phase 1: Setup" {
		t.Errorf("Expected phase 'Phase 1: Setup', got '%s'", t2.PhaseName)
	}
	if t2.PhaseOrder != 1 {
		t.Errorf("Expected phase order 1, got %d", t2.PhaseOrder)
	}
	if t2.Description != "Implement parser `src/parser.ts`" {
		t.Errorf("Unexpected description: '%s'", t2.Description)
	}

	t3 := doc.Tasks[2]
	if t3.Status != schema.TaskStatusInProgress {
		t.Errorf("Expected in_progress, got '%s'", t3.Status)
	}
	if len(t3.DependsOn) != 2 || t3.DependsOn[0] != "T001" || t3.DependsOn[1] != "T002" {
		t.Errorf("Expected depends on [T001 T002], got %v", t3.DependsOn)
	}
	if t3.Description != "Wire up storage, depends on: T001, T002" {
		t.Errorf("Expected depends clause to stay in description, got '%s'", t3.Description)
	}
	if t3.Line != 7 {
		t.Errorf("Expected line 7, got %d", t3.Line)
	}

	// An uppercase X is not a completion marker, and the Notes heading
	// must not have reset the phase context.
	t4 := doc.Tasks[3]
	if t4.Status != schema.TaskStatusNotStarted {
		t.Errorf("Expected uppercase X to stay not_started, got '%s'", t4.Status)
	}
	if t4.PhaseName != "Phase 2: Core" {
		t.Errorf("Expected phase 'Phase 2: Core', got '%s'", t4.PhaseName)
	}
	if t4.PhaseOrder != 2 {
		t.Errorf("Expected phase order 2, got %d", t4.PhaseOrder)
	}
	if !t4.IsParallel {
		t.Error("Expected parallel marker to be detected")
	}
	if t4.Description != "Build sync engine" {
		t.Errorf("Unexpected description: '%s'", t4.Description)
	}
	if t4.Line != 15 {
		t.Errorf("Expected line 15, got %d", t4.Line)
	}
}

func TestParseTasksNoPhaseHeadings(t *testing.T) {
	src := "# Tasks\n\n- [ ] T001 First task\n"

	doc := New().ParseTasks([]byte(src))

	if len(doc.Tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(doc.Tasks))
	}
	if doc.Tasks[0].PhaseName != "" {
		t.Errorf("Expected empty phase name, got '%s'", doc.Tasks[0].PhaseName)
	}
	if doc.Tasks[0].PhaseOrder != 0 {
		t.Errorf("Expected phase order 0, got %d", doc.Tasks[0].PhaseOrder)
	}
	if doc.Tasks[0].Line != 3 {
		t.Errorf("Expected line 3, got %d", doc.Tasks[0].Line)
	}
}

func TestParseTasksNonPhaseHeadingKeepsContext(t *testing.T) {
	src := `## Phase 1: Setup

- [ ] T001 First

## Checkpoint

- [ ] T002 Second
`

	doc := New().ParseTasks([]byte(src))

	if len(doc.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(doc.Tasks))
	}
	if doc.Tasks[1].PhaseName != "Phase 1: Setup" {
		t.Errorf("Expected task after Checkpoint to keep phase, got '%s'", doc.Tasks[1].PhaseName)
	}
	if len(doc.PhaseNames) != 1 {
		t.Errorf("Expected 1 phase name, got %d", len(doc.PhaseNames))
	}
}

func TestParseTasksBulletVariants(t *testing.T) {
	src := "* [ ] T001 Star bullet\n  - [x] T002 Indented child\n"

	doc := New().ParseTasks([]byte(src))

	if len(doc.Tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(doc.Tasks))
	}
	if doc.Tasks[0].TaskID != "T001" || doc.Tasks[1].TaskID != "T002" {
		t.Errorf("Expected T001 and T002, got %s and %s", doc.Tasks[0].TaskID, doc.Tasks[1].TaskID)
	}
	if doc.Tasks[1].Status != schema.TaskStatusDone {
		t.Errorf("Expected indented checkbox to parse, got status '%s'", doc.Tasks[1].Status)
	}
}

func TestParseTasksLowercaseIdentifier(t *testing.T) {
	src := "- [ ] t005 lowercase id still counts\n"

	doc := New().ParseTasks([]byte(src))

	if len(doc.Tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(doc.Tasks))
	}
	if doc.Tasks[0].TaskID != "T005" {
		t.Errorf("Expected normalized T005, got '%s'", doc.Tasks[0].TaskID)
	}
}

func TestParseTasksEmptyInput(t *testing.T) {
	doc := New().ParseTasks(nil)

	if doc.Title != "" || len(doc.Tasks) != 0 || len(doc.PhaseNames) != 0 {
		t.Errorf("Expected empty document, got %+v", doc)
	}
}

func TestCheckboxStatus(t *testing.T) {
	tests := []struct {
		marker string
		want   string
	}{
		{"x", schema.TaskStatusDone},
		{"/", schema.TaskStatusInProgress},
		{" ", schema.TaskStatusNotStarted},
		{"", schema.TaskStatusNotStarted},
		{"X", schema.TaskStatusNotStarted},
		{"-", schema.TaskStatusNotStarted},
	}

	for _, tt := range tests {
		if got := checkboxStatus(tt.marker); got != tt.want {
			t.Errorf("checkboxStatus(%q) = %v, want %v", tt.marker, got, tt.want)
		}
	}
}

func BenchmarkParseTasks(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("# Tasks: Benchmark\n\n")
	id := 0
	for phase := 1; phase <= 5; phase++ {
		fmt.Fprintf(&sb, "## Phase %d: Work\n\n", phase)
		for i := 0; i < 40; i++ {
			id++
			fmt.Fprintf(&sb, "- [ ] T%03d Implement step %d [P]\n", id, i)
		}
		sb.WriteString("\n")
	}

	src := []byte(sb.String())
	p := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.ParseTasks(src)
	}
}
