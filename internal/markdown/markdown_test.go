package markdown

import (
	"strings"
	"testing"
)

func TestParse_BlockKindsInOrder(t *testing.T) {
	source := []byte(`# Title

Intro paragraph.

## Section

- first item
- second item

| Name | Type |
|------|------|
| id   | int  |

` + "```go\nfunc main() {}\n```\n")

	p := New()
	blocks := p.Parse(source)

	wantKinds := []Kind{KindHeading, KindParagraph, KindHeading, KindList, KindTable, KindCode}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("Parse() returned %d blocks, want %d", len(blocks), len(wantKinds))
	}
	for i, want := range wantKinds {
		if blocks[i].Kind != want {
			t.Errorf("block %d kind = %v, want %v", i, blocks[i].Kind, want)
		}
	}

	if blocks[0].Level != 1 {
		t.Errorf("title heading level = %d, want 1", blocks[0].Level)
	}
	if blocks[2].Level != 2 {
		t.Errorf("section heading level = %d, want 2", blocks[2].Level)
	}
	if blocks[0].Text != "Title" {
		t.Errorf("title text = %q, want %q", blocks[0].Text, "Title")
	}
}

func TestParse_RawKeepsInlineMarkers(t *testing.T) {
	source := []byte("**Status**: Draft\n")

	blocks := New().Parse(source)
	if len(blocks) != 1 {
		t.Fatalf("Parse() returned %d blocks, want 1", len(blocks))
	}

	b := blocks[0]
	if b.Kind != KindParagraph {
		t.Fatalf("block kind = %v, want paragraph", b.Kind)
	}
	if b.Raw != "**Status**: Draft" {
		t.Errorf("Raw = %q, want markers preserved", b.Raw)
	}
	if b.Text != "Status: Draft" {
		t.Errorf("Text = %q, want markers stripped", b.Text)
	}
}

func TestParse_SoftLineBreakFlattensToSpace(t *testing.T) {
	source := []byte("line one\nline two\n")

	blocks := New().Parse(source)
	if len(blocks) != 1 {
		t.Fatalf("Parse() returned %d blocks, want 1", len(blocks))
	}
	if blocks[0].Text != "line one line two" {
		t.Errorf("Text = %q, want single flattened line", blocks[0].Text)
	}
}

func TestParse_ListItems(t *testing.T) {
	source := []byte(`- **FR-001**: Users must log in
- plain item
- parent item
  - nested item
`)

	blocks := New().Parse(source)
	if len(blocks) != 1 {
		t.Fatalf("Parse() returned %d blocks, want 1", len(blocks))
	}

	items := blocks[0].Items
	if len(items) != 3 {
		t.Fatalf("list has %d items, want 3", len(items))
	}

	if items[0].Raw != "**FR-001**: Users must log in" {
		t.Errorf("item 0 Raw = %q, want markers preserved", items[0].Raw)
	}
	if items[0].Text != "FR-001: Users must log in" {
		t.Errorf("item 0 Text = %q, want markers stripped", items[0].Text)
	}
	if items[1].Text != "plain item" {
		t.Errorf("item 1 Text = %q, want %q", items[1].Text, "plain item")
	}
	if strings.Contains(items[2].Text, "nested") {
		t.Errorf("item 2 Text = %q, nested sub-list should be excluded", items[2].Text)
	}
}

func TestParse_Table(t *testing.T) {
	source := []byte(`| Name | Type | Constraint |
|------|------|------------|
| id | uuid | primary key |
| email | string | unique |
`)

	blocks := New().Parse(source)
	if len(blocks) != 1 {
		t.Fatalf("Parse() returned %d blocks, want 1", len(blocks))
	}

	b := blocks[0]
	if b.Kind != KindTable {
		t.Fatalf("block kind = %v, want table", b.Kind)
	}
	wantHeader := []string{"Name", "Type", "Constraint"}
	if len(b.Header) != len(wantHeader) {
		t.Fatalf("header has %d cells, want %d", len(b.Header), len(wantHeader))
	}
	for i, want := range wantHeader {
		if b.Header[i] != want {
			t.Errorf("header[%d] = %q, want %q", i, b.Header[i], want)
		}
	}
	if len(b.Rows) != 2 {
		t.Fatalf("table has %d rows, want 2", len(b.Rows))
	}
	if b.Rows[0][0] != "id" || b.Rows[0][1] != "uuid" || b.Rows[0][2] != "primary key" {
		t.Errorf("row 0 = %v, want [id uuid primary key]", b.Rows[0])
	}
	if b.Rows[1][2] != "unique" {
		t.Errorf("row 1 constraint = %q, want %q", b.Rows[1][2], "unique")
	}
}

func TestParse_CodeBlock(t *testing.T) {
	source := []byte("```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n")

	blocks := New().Parse(source)
	if len(blocks) != 1 {
		t.Fatalf("Parse() returned %d blocks, want 1", len(blocks))
	}

	b := blocks[0]
	if b.Kind != KindCode {
		t.Fatalf("block kind = %v, want code", b.Kind)
	}
	if b.Lang != "go" {
		t.Errorf("Lang = %q, want %q", b.Lang, "go")
	}
	if !strings.Contains(b.Code, "\tprintln(\"hi\")") {
		t.Errorf("Code = %q, want indentation preserved", b.Code)
	}
	if strings.HasSuffix(b.Code, "\n") {
		t.Errorf("Code = %q, want trailing newline trimmed", b.Code)
	}
}

func TestParse_BlockquoteBecomesParagraph(t *testing.T) {
	source := []byte("> quoted note\n")

	blocks := New().Parse(source)
	if len(blocks) != 1 {
		t.Fatalf("Parse() returned %d blocks, want 1", len(blocks))
	}
	if blocks[0].Kind != KindParagraph {
		t.Errorf("block kind = %v, want paragraph", blocks[0].Kind)
	}
	if blocks[0].Text != "quoted note" {
		t.Errorf("Text = %q, want %q", blocks[0].Text, "quoted note")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	blocks := New().Parse(nil)
	if len(blocks) != 0 {
		t.Errorf("Parse(nil) returned %d blocks, want 0", len(blocks))
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindHeading, "heading"},
		{KindParagraph, "paragraph"},
		{KindList, "list"},
		{KindTable, "table"},
		{KindCode, "code"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
