package markdown

// Kind classifies a block.
type Kind int

const (
	KindHeading Kind = iota
	KindParagraph
	KindList
	KindTable
	KindCode
)

// String returns a human-readable name for the block kind.
func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// Block is one structural unit of a parsed document. Text carries the
// flattened leaf text with inline formatting stripped; Raw carries the
// original source where the underlying node exposes it, so callers can
// still see markers like ** that flattening removes.
type Block struct {
	Kind  Kind
	Level int    // heading depth, headings only
	Raw   string
	Text  string

	Items []ListItem // lists only

	Header []string   // tables only
	Rows   [][]string // tables only, body rows

	Lang string // code only
	Code string // code only
}

// ListItem is one item of a list block. Nested sub-lists are not
// flattened into the item text.
type ListItem struct {
	Raw  string
	Text string
}
