// Package markdown converts raw document text into a flat sequence of
// typed blocks. It is the only layer that touches markup syntax; the
// format parsers consume blocks and never see heading markers, list
// bullets or table pipes.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Parser turns document text into blocks. A single Parser is safe to
// reuse across documents.
type Parser struct {
	md goldmark.Markdown
}

// New creates a Parser with table support enabled.
func New() *Parser {
	return &Parser{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Parse returns the ordered top-level blocks of source. Parsing never
// fails: unrecognized constructs are dropped, not reported.
func (p *Parser) Parse(source []byte) []Block {
	doc := p.md.Parser().Parse(text.NewReader(source))

	blocks := make([]Block, 0, doc.ChildCount())
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if b, ok := convert(node, source); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func convert(node ast.Node, source []byte) (Block, bool) {
	switch n := node.(type) {
	case *ast.Heading:
		return Block{
			Kind:  KindHeading,
			Level: n.Level,
			Raw:   rawText(n, source),
			Text:  flatten(n, source),
		}, true

	case *ast.Paragraph:
		return Block{
			Kind: KindParagraph,
			Raw:  rawText(n, source),
			Text: flatten(n, source),
		}, true

	case *ast.TextBlock:
		return Block{
			Kind: KindParagraph,
			Raw:  rawText(n, source),
			Text: flatten(n, source),
		}, true

	case *ast.Blockquote:
		// Quoted content degrades to a single paragraph block.
		return Block{
			Kind: KindParagraph,
			Raw:  blockquoteRaw(n, source),
			Text: flatten(n, source),
		}, true

	case *ast.List:
		items := make([]ListItem, 0, n.ChildCount())
		for li := n.FirstChild(); li != nil; li = li.NextSibling() {
			items = append(items, ListItem{
				Raw:  itemString(li, source, rawText),
				Text: itemString(li, source, flatten),
			})
		}
		return Block{
			Kind:  KindList,
			Raw:   joinItems(items, func(it ListItem) string { return it.Raw }),
			Text:  joinItems(items, func(it ListItem) string { return it.Text }),
			Items: items,
		}, true

	case *east.Table:
		var header []string
		var rows [][]string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch row := c.(type) {
			case *east.TableHeader:
				header = cellTexts(row, source)
			case *east.TableRow:
				rows = append(rows, cellTexts(row, source))
			}
		}
		return Block{
			Kind:   KindTable,
			Text:   flatten(n, source),
			Header: header,
			Rows:   rows,
		}, true

	case *ast.FencedCodeBlock:
		code := codeText(n, source)
		return Block{
			Kind: KindCode,
			Raw:  code,
			Text: code,
			Lang: string(n.Language(source)),
			Code: code,
		}, true

	case *ast.CodeBlock:
		code := codeText(n, source)
		return Block{
			Kind: KindCode,
			Raw:  code,
			Text: code,
			Code: code,
		}, true
	}

	// Thematic breaks, raw HTML and anything else carry no structure
	// the format parsers care about.
	return Block{}, false
}

// flatten concatenates all leaf text under node, dropping inline
// formatting. Soft line breaks inside a paragraph become single spaces.
func flatten(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.AutoLink:
			sb.Write(t.URL(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// rawText joins the source lines backing node. Headings lose their #
// markers (goldmark excludes them from the line segments) but inline
// markup like ** survives verbatim.
func rawText(node ast.Node, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimSpace(sb.String())
}

func blockquoteRaw(node ast.Node, source []byte) string {
	var parts []string
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		if s := rawText(c, source); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// itemString renders one list item via the given extractor, skipping
// nested sub-lists so item text stays on one conceptual line.
func itemString(item ast.Node, source []byte, extract func(ast.Node, []byte) string) string {
	var parts []string
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, nested := c.(*ast.List); nested {
			continue
		}
		if s := extract(c, source); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func joinItems(items []ListItem, get func(ListItem) string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, get(it))
	}
	return strings.Join(parts, "\n")
}

func cellTexts(row ast.Node, source []byte) []string {
	var cells []string
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		cells = append(cells, flatten(c, source))
	}
	return cells
}

// codeText joins the inner lines of a code block, preserving
// indentation and trimming only the trailing newline.
func codeText(node ast.Node, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}
