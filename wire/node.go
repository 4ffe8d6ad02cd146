// Package wire defines the host-visible AST: a tagged tree of Markdown block
// and inline nodes, serializable to JSON, together with the codec that maps
// it onto the engine's node types.
//
// The tree round-trips: a tree produced by Encode can be handed back to
// Decode and rendered to byte-identical output, because Decode rebuilds the
// engine nodes over a synthetic source buffer carrying every literal.
package wire

// Position is a 1-based line/column pair.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Sourcepos is the source range of a node, 1-based and inclusive.
type Sourcepos struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Attribute is a single rendered attribute (name/value), order-preserving.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Node is one node of the host-visible AST. Kind selects which of the
// remaining fields are meaningful; unused fields are omitted on the wire.
type Node struct {
	Kind     string  `json:"kind"`
	Children []*Node `json:"children,omitempty"`

	// Literal text content (text, string, code blocks, raw HTML).
	Literal string `json:"literal,omitempty"`

	// Text flags.
	SoftBreak bool `json:"soft_break,omitempty"`
	HardBreak bool `json:"hard_break,omitempty"`
	Raw       bool `json:"raw,omitempty"`
	Code      bool `json:"code,omitempty"`

	// Heading and emphasis level.
	Level int `json:"level,omitempty"`

	// List shape.
	Ordered bool   `json:"ordered,omitempty"`
	Tight   bool   `json:"tight,omitempty"`
	Start   int    `json:"start,omitempty"`
	Marker  string `json:"marker,omitempty"`
	Offset  int    `json:"offset,omitempty"`

	// Link and image.
	Destination string `json:"destination,omitempty"`
	Title       string `json:"title,omitempty"`

	// Autolink.
	AutoLinkType string `json:"auto_link_type,omitempty"`
	Protocol     string `json:"protocol,omitempty"`

	// Fenced code block info string.
	Info string `json:"info,omitempty"`

	// HTML block shape.
	HTMLBlockType int    `json:"html_block_type,omitempty"`
	Closure       string `json:"closure,omitempty"`

	// Tables.
	Alignments []string `json:"alignments,omitempty"`
	Alignment  string   `json:"alignment,omitempty"`

	// Task list item state.
	Checked bool `json:"checked,omitempty"`

	// Footnotes.
	Index    int    `json:"index,omitempty"`
	RefCount int    `json:"ref_count,omitempty"`
	RefIndex int    `json:"ref_index,omitempty"`
	Count    int    `json:"count,omitempty"`
	Ref      string `json:"ref,omitempty"`

	// Wikilinks.
	Target   string `json:"target,omitempty"`
	Fragment string `json:"fragment,omitempty"`
	Embed    bool   `json:"embed,omitempty"`

	Attributes []Attribute `json:"attributes,omitempty"`
	Sourcepos  *Sourcepos  `json:"sourcepos,omitempty"`
}

// Node kinds, as they appear on the wire.
const (
	KindDocument              = "document"
	KindHeading               = "heading"
	KindParagraph             = "paragraph"
	KindTextBlock             = "text_block"
	KindBlockquote            = "blockquote"
	KindList                  = "list"
	KindListItem              = "list_item"
	KindFencedCodeBlock       = "fenced_code_block"
	KindCodeBlock             = "code_block"
	KindHTMLBlock             = "html_block"
	KindThematicBreak         = "thematic_break"
	KindText                  = "text"
	KindString                = "string"
	KindCodeSpan              = "code_span"
	KindEmphasis              = "emphasis"
	KindLink                  = "link"
	KindImage                 = "image"
	KindAutoLink              = "auto_link"
	KindRawHTML               = "raw_html"
	KindStrikethrough         = "strikethrough"
	KindTaskCheckBox          = "task_checkbox"
	KindTable                 = "table"
	KindTableHeader           = "table_header"
	KindTableRow              = "table_row"
	KindTableCell             = "table_cell"
	KindFootnote              = "footnote"
	KindFootnoteList          = "footnote_list"
	KindFootnoteLink          = "footnote_link"
	KindFootnoteBacklink      = "footnote_backlink"
	KindDefinitionList        = "definition_list"
	KindDefinitionTerm        = "definition_term"
	KindDefinitionDescription = "definition_description"
	KindWikilink              = "wikilink"
)
